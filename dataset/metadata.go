package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PhysicalQuantity is a numerical value together with its unit.
type PhysicalQuantity struct {
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit,omitempty"`
}

// FromString parses a "value unit" string, e.g. "9.68 GHz". A missing unit
// is allowed; a missing value is an error.
func (q *PhysicalQuantity) FromString(s string) error {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return fmt.Errorf("dataset: empty quantity string")
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fmt.Errorf("dataset: parsing quantity %q: %w", s, err)
	}

	q.Value = value
	if len(fields) > 1 {
		q.Unit = fields[1]
	}

	return nil
}

// String renders the quantity as "value unit".
func (q PhysicalQuantity) String() string {
	if q.Unit == "" {
		return strconv.FormatFloat(q.Value, 'g', -1, 64)
	}

	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit
}

// IsZero reports whether the quantity is entirely unset.
func (q PhysicalQuantity) IsZero() bool {
	return q.Value == 0 && q.Unit == ""
}

// Measurement describes when and by whom the data were recorded.
type Measurement struct {
	Start    time.Time `yaml:"start,omitempty"`
	End      time.Time `yaml:"end,omitempty"`
	Operator string    `yaml:"operator,omitempty"`
	Purpose  string    `yaml:"purpose,omitempty"`
	Label    string    `yaml:"label,omitempty"`
	Filename string    `yaml:"filename,omitempty"`
}

// Sample describes the measured sample.
type Sample struct {
	Name        string `yaml:"name,omitempty"`
	ID          string `yaml:"id,omitempty"`
	Description string `yaml:"description,omitempty"`
	Solvent     string `yaml:"solvent,omitempty"`
	Preparation string `yaml:"preparation,omitempty"`
	Tube        string `yaml:"tube,omitempty"`
}

// MagneticField describes the swept magnetic field.
type MagneticField struct {
	Start           PhysicalQuantity `yaml:"start,omitempty"`
	Stop            PhysicalQuantity `yaml:"stop,omitempty"`
	SweepWidth      PhysicalQuantity `yaml:"sweep_width,omitempty"`
	StepWidth       PhysicalQuantity `yaml:"step_width,omitempty"`
	Points          int              `yaml:"points,omitempty"`
	Sequence        string           `yaml:"sequence,omitempty"`
	Controller      string           `yaml:"controller,omitempty"`
	PowerSupply     string           `yaml:"power_supply,omitempty"`
	FieldProbeType  string           `yaml:"field_probe_type,omitempty"`
	FieldProbeModel string           `yaml:"field_probe_model,omitempty"`
}

// Bridge describes the microwave bridge.
type Bridge struct {
	Model            string           `yaml:"model,omitempty"`
	Controller       string           `yaml:"controller,omitempty"`
	Attenuation      PhysicalQuantity `yaml:"attenuation,omitempty"`
	Power            PhysicalQuantity `yaml:"power,omitempty"`
	Detection        string           `yaml:"detection,omitempty"`
	FrequencyCounter string           `yaml:"frequency_counter,omitempty"`
	MWFrequency      PhysicalQuantity `yaml:"mw_frequency,omitempty"`
	QValue           float64          `yaml:"q_value,omitempty"`
}

// SignalChannel describes the lock-in detection settings.
type SignalChannel struct {
	Model               string           `yaml:"model,omitempty"`
	ModulationAmplifier string           `yaml:"modulation_amplifier,omitempty"`
	Accumulations       int              `yaml:"accumulations,omitempty"`
	ModulationFrequency PhysicalQuantity `yaml:"modulation_frequency,omitempty"`
	ModulationAmplitude PhysicalQuantity `yaml:"modulation_amplitude,omitempty"`
	ReceiverGain        PhysicalQuantity `yaml:"receiver_gain,omitempty"`
	Conversion          PhysicalQuantity `yaml:"conversion,omitempty"`
	TimeConstant        PhysicalQuantity `yaml:"time_constant,omitempty"`
	Phase               PhysicalQuantity `yaml:"phase,omitempty"`
}

// Experiment describes the kind of experiment performed.
type Experiment struct {
	Type              string `yaml:"type,omitempty"`
	Runs              int    `yaml:"runs,omitempty"`
	VariableParameter string `yaml:"variable_parameter,omitempty"`
}

// Spectrometer identifies the instrument.
type Spectrometer struct {
	Model    string `yaml:"model,omitempty"`
	Software string `yaml:"software,omitempty"`
}

// TemperatureControl describes the sample temperature during measurement.
type TemperatureControl struct {
	Temperature PhysicalQuantity `yaml:"temperature,omitempty"`
	Controller  string           `yaml:"controller,omitempty"`
	Cryostat    string           `yaml:"cryostat,omitempty"`
	Cryogen     string           `yaml:"cryogen,omitempty"`
}

// Probehead describes the resonator.
type Probehead struct {
	Type     string `yaml:"type,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Coupling string `yaml:"coupling,omitempty"`
}

// Metadata is the complete set of metadata of one measurement.
type Metadata struct {
	Measurement        Measurement        `yaml:"measurement,omitempty"`
	Sample             Sample             `yaml:"sample,omitempty"`
	MagneticField      MagneticField      `yaml:"magnetic_field,omitempty"`
	Bridge             Bridge             `yaml:"bridge,omitempty"`
	SignalChannel      SignalChannel      `yaml:"signal_channel,omitempty"`
	Experiment         Experiment         `yaml:"experiment,omitempty"`
	Spectrometer       Spectrometer       `yaml:"spectrometer,omitempty"`
	TemperatureControl TemperatureControl `yaml:"temperature_control,omitempty"`
	Probehead          Probehead          `yaml:"probehead,omitempty"`
}
