package healthtrack

// ShortDate returns the last five characters of an ISO date, "MM-DD" for
// "YYYY-MM-DD". Shorter strings come back unchanged.
func ShortDate(iso string) string {
	r := []rune(iso)
	if len(r) <= 5 {
		return iso
	}
	return string(r[len(r)-5:])
}

// Transform flattens the parallel arrays into one reading per date index,
// in input order. A missing array, or an array shorter than Dates, reads as
// null at that index. Readings where BMI, Systolic, BloodSugar and SpO2 are
// all null are dropped; Weight or Diastolic alone do not keep a reading.
// Duplicate dates are kept as separate readings.
func Transform(s Series) []MetricReading {
	out := make([]MetricReading, 0, len(s.Dates))
	for i, date := range s.Dates {
		r := MetricReading{
			Date:       ShortDate(date),
			FullDate:   date,
			BMI:        at(s.BMI, i),
			Systolic:   at(s.Systolic, i),
			Diastolic:  at(s.Diastolic, i),
			BloodSugar: at(s.BloodSugar, i),
			SpO2:       at(s.SpO2, i),
			Weight:     at(s.Weight, i),
		}
		if !r.hasMetric() {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (r MetricReading) hasMetric() bool {
	return r.BMI != nil || r.Systolic != nil || r.BloodSugar != nil || r.SpO2 != nil
}

func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}

// Summarize computes latest/min/max/avg for each metric over the readings.
func Summarize(points []MetricReading) Summary {
	s := Summary{Readings: len(points)}
	s.BMI = summarize(points, func(r MetricReading) *float64 { return r.BMI })
	s.Weight = summarize(points, func(r MetricReading) *float64 { return r.Weight })
	s.Systolic = summarize(points, func(r MetricReading) *float64 { return r.Systolic })
	s.Diastolic = summarize(points, func(r MetricReading) *float64 { return r.Diastolic })
	s.BloodSugar = summarize(points, func(r MetricReading) *float64 { return r.BloodSugar })
	s.SpO2 = summarize(points, func(r MetricReading) *float64 { return r.SpO2 })
	return s
}

func summarize(points []MetricReading, get func(MetricReading) *float64) *Stat {
	var st *Stat
	var sum float64
	for _, p := range points {
		v := get(p)
		if v == nil {
			continue
		}
		if st == nil {
			st = &Stat{Min: *v, Max: *v}
		}
		st.Count++
		sum += *v
		if *v < st.Min {
			st.Min = *v
		}
		if *v > st.Max {
			st.Max = *v
		}
		st.Latest = *v
		st.LatestDate = p.FullDate
	}
	if st != nil {
		st.Avg = round1(sum / float64(st.Count))
	}
	return st
}
