package dataset

// Unit conversions applied during import. Vendor files record quantities in
// a mix of units (Gauss, Hz, W); datasets use mT for fields, GHz for the
// microwave frequency, kHz for the modulation frequency and mW for the
// microwave power throughout.

// ToMillitesla converts a field quantity given in Gauss to mT.
func (q *PhysicalQuantity) ToMillitesla() {
	if q.Unit == "G" || q.Unit == "Gauss" {
		q.Value /= 10
		q.Unit = "mT"
	}
}

// ToGigahertz converts a frequency quantity given in Hz or MHz to GHz.
func (q *PhysicalQuantity) ToGigahertz() {
	switch q.Unit {
	case "Hz":
		q.Value *= 1e-9
		q.Unit = "GHz"
	case "MHz":
		q.Value *= 1e-3
		q.Unit = "GHz"
	}
}

// ToKilohertz converts a frequency quantity given in Hz to kHz.
func (q *PhysicalQuantity) ToKilohertz() {
	if q.Unit == "Hz" {
		q.Value *= 1e-3
		q.Unit = "kHz"
	}
}

// ToMilliwatt converts a power quantity given in W to mW.
func (q *PhysicalQuantity) ToMilliwatt() {
	if q.Unit == "W" {
		q.Value *= 1e3
		q.Unit = "mW"
	}
}

// GaussToMillitesla converts a bare field value from Gauss to mT.
func GaussToMillitesla(value float64) float64 {
	return value / 10
}
