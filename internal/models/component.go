package models

import (
	"fmt"
	"strings"
)

// ComponentType is the closed set of hardware categories the engine resolves.
type ComponentType string

const (
	CPU         ComponentType = "CPU"
	GPU         ComponentType = "GPU"
	RAM         ComponentType = "RAM"
	Motherboard ComponentType = "Motherboard"
	Storage     ComponentType = "Storage"
	PSU         ComponentType = "PSU"
	Case        ComponentType = "Case"
	Cooler      ComponentType = "Cooler"
	Fan         ComponentType = "Fan"
	NIC         ComponentType = "NIC"
	SoundCard   ComponentType = "SoundCard"
	Other       ComponentType = "Other"

	// Auto asks the engine to infer the type from the query text.
	Auto ComponentType = "auto"
)

// ComponentTypes lists every valid ComponentType in display order.
var ComponentTypes = []ComponentType{CPU, GPU, RAM, Motherboard, Storage, PSU, Case, Cooler, Fan, NIC, SoundCard, Other}

var componentAliases = map[string]ComponentType{
	"processor":     CPU,
	"graphics":      GPU,
	"graphics card": GPU,
	"video card":    GPU,
	"memory":        RAM,
	"mobo":          Motherboard,
	"mainboard":     Motherboard,
	"ssd":           Storage,
	"hdd":           Storage,
	"power supply":  PSU,
	"sound card":    SoundCard,
	"network card":  NIC,
}

// ParseComponentType resolves a component type name case-insensitively.
func ParseComponentType(name string) (ComponentType, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, string(Auto)) {
		return Auto, nil
	}
	for _, ct := range ComponentTypes {
		if strings.EqualFold(string(ct), name) {
			return ct, nil
		}
	}
	if ct, ok := componentAliases[strings.ToLower(name)]; ok {
		return ct, nil
	}
	return "", fmt.Errorf("unknown component type %q", name)
}

func (c ComponentType) Valid() bool {
	for _, ct := range ComponentTypes {
		if ct == c {
			return true
		}
	}
	return false
}

func (c ComponentType) String() string {
	return string(c)
}
