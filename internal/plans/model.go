package plans

import (
	"strconv"
	"time"
)

// Category distinguishes scheduled maintenance from fault repair.
type Category string

const (
	CategoryPreventive Category = "Preventive"
	CategoryCorrective Category = "Corrective"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryPreventive || c == CategoryCorrective
}

// InstrumentType is the instrument family the plan targets.
type InstrumentType string

const (
	InstrumentPressureTransmitter    InstrumentType = "Pressure Transmitter"
	InstrumentControlValve           InstrumentType = "Control Valve"
	InstrumentGasDetector            InstrumentType = "Gas Detector (Combustible/Toxic)"
	InstrumentLevelTransmitter       InstrumentType = "Level Transmitter"
	InstrumentFlowMeter              InstrumentType = "Flow Meter"
	InstrumentTemperatureTransmitter InstrumentType = "Temperature Transmitter"
	InstrumentESDValve               InstrumentType = "Emergency Shutdown Valve (ESD)"
	InstrumentPressureGauge          InstrumentType = "Pressure Gauge"
)

// InstrumentTypes lists the selectable instrument types in display order.
var InstrumentTypes = []InstrumentType{
	InstrumentPressureTransmitter,
	InstrumentControlValve,
	InstrumentGasDetector,
	InstrumentLevelTransmitter,
	InstrumentFlowMeter,
	InstrumentTemperatureTransmitter,
	InstrumentESDValve,
	InstrumentPressureGauge,
}

// Valid reports whether t is a known instrument type.
func (t InstrumentType) Valid() bool {
	for _, known := range InstrumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PlatformType is the offshore installation kind.
type PlatformType string

const (
	PlatformFixed PlatformType = "Fixed Platform"
	PlatformFPSO  PlatformType = "FPSO (Floating Production Storage and Offloading)"
)

// PlatformTypes lists the selectable platform types in display order.
var PlatformTypes = []PlatformType{PlatformFixed, PlatformFPSO}

// Valid reports whether p is a known platform type.
func (p PlatformType) Valid() bool {
	return p == PlatformFixed || p == PlatformFPSO
}

// Step is one test procedure entry.
type Step struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Reference string `json:"reference"`
}

// SafetyRisk is one entry of the risk register (APR). Its index in
// Plan.SafetyAnalysis is the key used by risk acknowledgement.
type SafetyRisk struct {
	Hazard     string `json:"hazard"`
	Mitigation string `json:"mitigation"`
}

// TechnicalSpecs carries calibration expectations.
type TechnicalSpecs struct {
	RangeMin       float64 `json:"rangeMin"`
	RangeMax       float64 `json:"rangeMax"`
	Unit           string  `json:"unit"`
	Accuracy       string  `json:"accuracy"`
	ExpectedSignal string  `json:"expectedSignal"`
}

// Plan is the generated maintenance document. It is not modified after generation.
type Plan struct {
	ID                      string         `json:"id"`
	Category                Category       `json:"category"`
	InstrumentType          InstrumentType `json:"instrumentType"`
	PlatformType            PlatformType   `json:"platformType"`
	Tag                     string         `json:"tag"`
	IntervalMonths          *float64       `json:"intervalMonths,omitempty"`
	FailureSymptom          string         `json:"failureSymptom,omitempty"`
	FaultDiagnosis          string         `json:"faultDiagnosis,omitempty"`
	Personnel               []string       `json:"personnel"`
	Materials               []string       `json:"materials"`
	Standards               []string       `json:"standards"`
	SafetyAnalysis          []SafetyRisk   `json:"safetyAnalysis"`
	SafetyPrecautions       []string       `json:"safetyPrecautions,omitempty"`
	TestProcedures          []Step         `json:"testProcedures"`
	TechnicalSpecifications TechnicalSpecs `json:"technicalSpecifications"`
	CreatedAt               time.Time      `json:"createdAt"`
}

// IsCorrective reports whether the plan is a fault repair.
func (p Plan) IsCorrective() bool {
	return p.Category == CategoryCorrective
}

// Interval formats IntervalMonths without trailing zeros, or "" when absent.
func (p Plan) Interval() string {
	if p.IntervalMonths == nil {
		return ""
	}
	return strconv.FormatFloat(*p.IntervalMonths, 'f', -1, 64)
}

// Clone returns a detached deep copy.
func (p Plan) Clone() Plan {
	out := p
	if p.IntervalMonths != nil {
		v := *p.IntervalMonths
		out.IntervalMonths = &v
	}
	out.Personnel = cloneStrings(p.Personnel)
	out.Materials = cloneStrings(p.Materials)
	out.Standards = cloneStrings(p.Standards)
	out.SafetyPrecautions = cloneStrings(p.SafetyPrecautions)
	if p.SafetyAnalysis != nil {
		out.SafetyAnalysis = append([]SafetyRisk(nil), p.SafetyAnalysis...)
	}
	if p.TestProcedures != nil {
		out.TestProcedures = append([]Step(nil), p.TestProcedures...)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
