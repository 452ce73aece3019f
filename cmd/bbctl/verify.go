package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/metalbridge/bbapi/internal/biosdef"
)

// profile is the YAML description of a known board. Only the fields
// present in the file are checked, so a minimal profile with just the
// board name is valid.
type profile struct {
	Board      string `yaml:"board"`
	Firmware   string `yaml:"firmware"`
	Platform64 *bool  `yaml:"platform64"`

	Display     *bool `yaml:"display"`
	PowerSupply *bool `yaml:"power_supply"`
	SUPS        *bool `yaml:"sups"`

	Rails map[int]railRange `yaml:"rails"`

	MinSensors *uint32 `yaml:"min_sensors"`
}

// railRange bounds one supply rail in millivolts.
type railRange struct {
	Min uint16 `yaml:"min"`
	Max uint16 `yaml:"max"`
}

func loadProfile(path string) (*profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

func runVerify(c *client, out *printer, args []string) error {
	if len(args) != 1 {
		usage()
	}
	p, err := loadProfile(args[0])
	if err != nil {
		return err
	}

	failed := 0
	check := func(name string, ok bool, detail string) {
		if !ok {
			failed++
		}
		fmt.Printf("%-22s %-6s %s\n", name, out.verdict(ok), detail)
	}

	if p.Board != "" {
		name, err := c.readString(biosdef.GroupGeneral, biosdef.GeneralBoardName, 16)
		if err != nil {
			return fmt.Errorf("read board name: %w", err)
		}
		check("board name", name == p.Board, fmt.Sprintf("want %q, got %q", p.Board, name))
	}

	if p.Firmware != "" {
		raw, err := c.call(biosdef.GroupGeneral, biosdef.GeneralVersion, nil, 3)
		if err != nil {
			return fmt.Errorf("read firmware revision: %w", err)
		}
		ver, err := biosdef.DecodeVersion(raw)
		if err != nil {
			return err
		}
		check("firmware revision", ver.String() == p.Firmware, fmt.Sprintf("want %s, got %s", p.Firmware, ver))
	}

	if p.Platform64 != nil {
		platform, err := c.readU8(biosdef.GroupGeneral, biosdef.GeneralPlatformInfo)
		if err != nil {
			return fmt.Errorf("read platform info: %w", err)
		}
		got := platform == 0x01
		check("64 bit platform", got == *p.Platform64, fmt.Sprintf("want %v, got %v", *p.Platform64, got))
	}

	caps := []struct {
		name   string
		want   *bool
		group  uint32
		offset uint32
	}{
		{"display", p.Display, biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppEnableBacklight},
		{"power supply", p.PowerSupply, biosdef.GroupCXPwrSupp, biosdef.CXPwrSuppType},
		{"sups", p.SUPS, biosdef.GroupSUPS, biosdef.SUPSGPIOPinEx},
	}
	for _, cp := range caps {
		if cp.want == nil {
			continue
		}
		present, err := c.supports(cp.group, cp.offset)
		if err != nil {
			return fmt.Errorf("probe %s: %w", cp.name, err)
		}
		if cp.name == "sups" && !present {
			if present, err = c.supports(biosdef.GroupSUPS, biosdef.SUPSGPIOPin); err != nil {
				return fmt.Errorf("probe %s: %w", cp.name, err)
			}
		}
		check(cp.name+" capability", present == *cp.want, fmt.Sprintf("want %v, got %v", *cp.want, present))
	}

	railOffsets := map[int]uint32{
		5:  biosdef.CXPwrSupp5Volt,
		12: biosdef.CXPwrSupp12Volt,
		24: biosdef.CXPwrSupp24Volt,
	}
	for rail, want := range p.Rails {
		offset, ok := railOffsets[rail]
		if !ok {
			return fmt.Errorf("profile names unknown rail %dV", rail)
		}
		mv, err := c.readU16(biosdef.GroupCXPwrSupp, offset)
		if err != nil {
			return fmt.Errorf("read %dV rail: %w", rail, err)
		}
		name := fmt.Sprintf("%dV rail", rail)
		check(name, mv >= want.Min && mv <= want.Max,
			fmt.Sprintf("want %d..%d mV, got %d mV", want.Min, want.Max, mv))
	}

	if p.MinSensors != nil {
		count, err := c.readU32(biosdef.GroupSystem, biosdef.SystemCountSensors)
		if err != nil {
			return fmt.Errorf("read sensor count: %w", err)
		}
		check("sensor count", count >= *p.MinSensors, fmt.Sprintf("want at least %d, got %d", *p.MinSensors, count))
	}

	if failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	fmt.Println(out.pass("all checks passed"))
	return nil
}
