package infofile

import (
	"strconv"
	"strings"
	"time"

	"github.com/openepr/cwepr/dataset"
)

// Apply copies the parsed info file content into the dataset metadata.
// Only known keys are mapped; empty values never overwrite existing
// metadata. Vendor parameter files are expected to be applied afterwards,
// overriding hand-written values where both exist.
func (i *Info) Apply(md *dataset.Metadata) {
	i.applyGeneral(md)
	i.applySample(&md.Sample)
	i.applyExperiment(&md.Experiment)
	i.applySpectrometer(&md.Spectrometer)
	i.applyMagneticField(&md.MagneticField)
	i.applyBridge(&md.Bridge)
	i.applySignalChannel(&md.SignalChannel)
	i.applyTemperature(&md.TemperatureControl)
	i.applyProbehead(&md.Probehead)
}

func (i *Info) applyGeneral(md *dataset.Metadata) {
	const block = "GENERAL"

	setString(&md.Measurement.Operator, i.Get(block, "Operator"))
	setString(&md.Measurement.Purpose, i.Get(block, "Purpose"))
	setString(&md.Measurement.Label, i.Get(block, "Label"))
	setString(&md.Measurement.Filename, i.Get(block, "Filename"))

	setTime(&md.Measurement.Start,
		i.Get(block, "Date start"), i.Get(block, "Time start"))
	setTime(&md.Measurement.End,
		i.Get(block, "Date end"), i.Get(block, "Time end"))
}

func (i *Info) applySample(s *dataset.Sample) {
	const block = "SAMPLE"

	setString(&s.Name, i.Get(block, "Name"))
	setString(&s.ID, i.Get(block, "ID"))
	setString(&s.Description, i.Get(block, "Description"))
	setString(&s.Solvent, i.Get(block, "Solvent"))
	setString(&s.Preparation, i.Get(block, "Preparation"))
	setString(&s.Tube, i.Get(block, "Tube"))
}

func (i *Info) applyExperiment(e *dataset.Experiment) {
	const block = "EXPERIMENT"

	setString(&e.Type, i.Get(block, "Type"))
	setString(&e.VariableParameter, i.Get(block, "Variable parameter"))
	setInt(&e.Runs, i.Get(block, "Runs"))
}

func (i *Info) applySpectrometer(s *dataset.Spectrometer) {
	const block = "SPECTROMETER"

	setString(&s.Model, i.Get(block, "Model"))
	setString(&s.Software, i.Get(block, "Software"))
}

func (i *Info) applyMagneticField(f *dataset.MagneticField) {
	const block = "MAGNETIC FIELD"

	setQuantity(&f.Start, i.Get(block, "Start"))
	setQuantity(&f.Stop, i.Get(block, "Stop"))
	setQuantity(&f.SweepWidth, i.Get(block, "Sweep width"))
	setQuantity(&f.StepWidth, i.Get(block, "Step width"))
	setInt(&f.Points, i.Get(block, "Points"))
	setString(&f.Sequence, i.Get(block, "Sequence"))
	setString(&f.Controller, i.Get(block, "Controller"))
	setString(&f.PowerSupply, i.Get(block, "Power supply"))
	setString(&f.FieldProbeType, i.Get(block, "Field probe type"))
	setString(&f.FieldProbeModel, i.Get(block, "Field probe model"))
}

func (i *Info) applyBridge(b *dataset.Bridge) {
	const block = "BRIDGE"

	setString(&b.Model, i.Get(block, "Model"))
	setString(&b.Controller, i.Get(block, "Controller"))
	setString(&b.Detection, i.Get(block, "Detection"))
	setString(&b.FrequencyCounter, i.Get(block, "Frequency counter"))
	setQuantity(&b.MWFrequency, i.Get(block, "MW frequency"))
	setQuantity(&b.Attenuation, i.Get(block, "Attenuation"))
	setQuantity(&b.Power, i.Get(block, "Power"))
	setFloat(&b.QValue, i.Get(block, "Q value"))
}

func (i *Info) applySignalChannel(c *dataset.SignalChannel) {
	const block = "SIGNAL CHANNEL"

	setString(&c.Model, i.Get(block, "Model"))
	setString(&c.ModulationAmplifier, i.Get(block, "Modulation amplifier"))
	setInt(&c.Accumulations, i.Get(block, "Accumulations"))
	setQuantity(&c.ModulationFrequency, i.Get(block, "Modulation frequency"))
	setQuantity(&c.ModulationAmplitude, i.Get(block, "Modulation amplitude"))
	setQuantity(&c.ReceiverGain, i.Get(block, "Receiver gain"))
	setQuantity(&c.Conversion, i.Get(block, "Conversion time"))
	setQuantity(&c.TimeConstant, i.Get(block, "Time constant"))
	setQuantity(&c.Phase, i.Get(block, "Phase"))
}

func (i *Info) applyTemperature(tc *dataset.TemperatureControl) {
	const block = "TEMPERATURE"

	setQuantity(&tc.Temperature, i.Get(block, "Temperature"))
	setString(&tc.Controller, i.Get(block, "Controller"))
	setString(&tc.Cryostat, i.Get(block, "Cryostat"))
	setString(&tc.Cryogen, i.Get(block, "Cryogen"))
}

func (i *Info) applyProbehead(p *dataset.Probehead) {
	const block = "PROBEHEAD"

	setString(&p.Type, i.Get(block, "Type"))
	setString(&p.Model, i.Get(block, "Model"))
	setString(&p.Coupling, i.Get(block, "Coupling"))
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setInt(dst *int, value string) {
	if value == "" {
		return
	}

	if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		*dst = parsed
	}
}

func setFloat(dst *float64, value string) {
	if value == "" {
		return
	}

	if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		*dst = parsed
	}
}

func setQuantity(dst *dataset.PhysicalQuantity, value string) {
	if value == "" {
		return
	}

	var q dataset.PhysicalQuantity
	if err := q.FromString(value); err == nil {
		*dst = q
	}
}

func setTime(dst *time.Time, date, clock string) {
	if date == "" {
		return
	}

	value := strings.TrimSpace(date + " " + clock)
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	} {
		if parsed, err := time.Parse(layout, value); err == nil {
			*dst = parsed
			return
		}
	}
}
