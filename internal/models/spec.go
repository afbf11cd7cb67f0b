package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CPUSpec struct {
	Socket       string           `json:"socket,omitempty"`
	Cores        int              `json:"cores,omitempty"`
	Threads      int              `json:"threads,omitempty"`
	BaseClock    *decimal.Decimal `json:"base_clock_ghz,omitempty"`
	BoostClock   *decimal.Decimal `json:"boost_clock_ghz,omitempty"`
	TDP          int              `json:"tdp_w,omitempty"`
	Architecture string           `json:"architecture,omitempty"`
}

type GPUSpec struct {
	MemorySize   int    `json:"memory_size_mb,omitempty"`
	MemoryType   string `json:"memory_type,omitempty"`
	BaseClock    int    `json:"base_clock_mhz,omitempty"`
	BoostClock   int    `json:"boost_clock_mhz,omitempty"`
	TDP          int    `json:"tdp_w,omitempty"`
	BusInterface string `json:"bus_interface,omitempty"`
	MemoryBus    string `json:"memory_bus,omitempty"`
	Shaders      int    `json:"shaders,omitempty"`
}

type RAMSpec struct {
	Size       int    `json:"size_gb,omitempty"`
	Type       string `json:"type,omitempty"`
	Speed      int    `json:"speed_mhz,omitempty"`
	CASLatency string `json:"cas_latency,omitempty"`
}

type MotherboardSpec struct {
	Socket      string `json:"socket,omitempty"`
	Chipset     string `json:"chipset,omitempty"`
	FormFactor  string `json:"form_factor,omitempty"`
	MemorySlots int    `json:"memory_slots,omitempty"`
	MemoryType  string `json:"memory_type,omitempty"`
	MaxMemory   int    `json:"max_memory_gb,omitempty"`
	M2Slots     int    `json:"m2_slots,omitempty"`
	SATAPorts   int    `json:"sata_ports,omitempty"`
}

type StorageSpec struct {
	Capacity   int    `json:"capacity_gb,omitempty"`
	Interface  string `json:"interface,omitempty"`
	Type       string `json:"type,omitempty"`
	FormFactor string `json:"form_factor,omitempty"`
	ReadSpeed  int    `json:"read_speed_mbps,omitempty"`
	WriteSpeed int    `json:"write_speed_mbps,omitempty"`
}

type PSUSpec struct {
	Wattage    int    `json:"wattage,omitempty"`
	Efficiency string `json:"efficiency,omitempty"`
	Modular    string `json:"modular,omitempty"`
	FormFactor string `json:"form_factor,omitempty"`
}

type CoolerSpec struct {
	Type          string `json:"type,omitempty"`
	SocketSupport string `json:"socket_support,omitempty"`
	TDPRating     int    `json:"tdp_rating_w,omitempty"`
	FanSize       int    `json:"fan_size_mm,omitempty"`
	Height        int    `json:"height_mm,omitempty"`
}

type CaseSpec struct {
	FormFactor      string `json:"form_factor,omitempty"`
	MaxGPULength    int    `json:"max_gpu_length_mm,omitempty"`
	MaxCoolerHeight int    `json:"max_cooler_height_mm,omitempty"`
}

type FanSpec struct {
	Size      int              `json:"size_mm,omitempty"`
	MaxRPM    int              `json:"rpm_max,omitempty"`
	Airflow   *decimal.Decimal `json:"airflow_cfm,omitempty"`
	Connector string           `json:"connector,omitempty"`
}

type NICSpec struct {
	Speed     string `json:"speed,omitempty"`
	Interface string `json:"interface,omitempty"`
	Ports     int    `json:"ports,omitempty"`
}

type SoundCardSpec struct {
	Interface  string           `json:"interface,omitempty"`
	Channels   *decimal.Decimal `json:"channels,omitempty"`
	SampleRate int              `json:"sample_rate_khz,omitempty"`
}

// Attributes holds the attribute group of exactly one component type.
type Attributes struct {
	CPU         *CPUSpec         `json:"cpu,omitempty"`
	GPU         *GPUSpec         `json:"gpu,omitempty"`
	RAM         *RAMSpec         `json:"ram,omitempty"`
	Motherboard *MotherboardSpec `json:"motherboard,omitempty"`
	Storage     *StorageSpec     `json:"storage,omitempty"`
	PSU         *PSUSpec         `json:"psu,omitempty"`
	Cooler      *CoolerSpec      `json:"cooler,omitempty"`
	Case        *CaseSpec        `json:"case,omitempty"`
	Fan         *FanSpec         `json:"fan,omitempty"`
	NIC         *NICSpec         `json:"nic,omitempty"`
	SoundCard   *SoundCardSpec   `json:"sound_card,omitempty"`
}

// Empty reports whether no attribute group carries any value.
func (a Attributes) Empty() bool {
	switch {
	case a.CPU != nil && *a.CPU != (CPUSpec{}):
	case a.GPU != nil && *a.GPU != (GPUSpec{}):
	case a.RAM != nil && *a.RAM != (RAMSpec{}):
	case a.Motherboard != nil && *a.Motherboard != (MotherboardSpec{}):
	case a.Storage != nil && *a.Storage != (StorageSpec{}):
	case a.PSU != nil && *a.PSU != (PSUSpec{}):
	case a.Cooler != nil && *a.Cooler != (CoolerSpec{}):
	case a.Case != nil && *a.Case != (CaseSpec{}):
	case a.Fan != nil && *a.Fan != (FanSpec{}):
	case a.NIC != nil && *a.NIC != (NICSpec{}):
	case a.SoundCard != nil && *a.SoundCard != (SoundCardSpec{}):
	default:
		return true
	}
	return false
}

// SpecRecord is the resolved, canonical specification of one hardware model.
// Once persisted it is immutable reference data.
type SpecRecord struct {
	ID           int64             `json:"id,omitempty"`
	Type         ComponentType     `json:"component_type"`
	Manufacturer string            `json:"manufacturer,omitempty"`
	Model        string            `json:"model"`
	Title        string            `json:"title,omitempty"`
	Attributes   Attributes        `json:"attributes"`
	Source       string            `json:"source,omitempty"`
	SourceURL    string            `json:"source_url,omitempty"`
	RawData      map[string]string `json:"raw_data,omitempty"`
	ResolvedAt   time.Time         `json:"resolved_at"`
}

// DisplayName joins manufacturer and model the way listings show them.
func (r *SpecRecord) DisplayName() string {
	if r.Manufacturer == "" {
		return r.Model
	}
	return r.Manufacturer + " " + r.Model
}

// HasSpecs reports whether the record carries any extracted specification.
func (r *SpecRecord) HasSpecs() bool {
	return !r.Attributes.Empty() || len(r.RawData) > 0
}
