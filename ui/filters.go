package ui

import (
	"net/url"
	"strconv"

	"minevision/domain/agg"
)

// parseFilterQuery builds a FilterSpec from request query parameters. Both
// the dashboard server and the headless API accept the same parameters:
//
//	date_from, date_to    inclusive "2006-01-02" bounds
//	operators             repeatable
//	shifts                repeatable, integer
//	fleet_types           repeatable
//	hour_from, hour_to    inclusive hour-of-day bounds
//
// Unparseable numeric values are ignored rather than rejected; a filter
// never makes a request fail.
func parseFilterQuery(values url.Values) agg.FilterSpec {
	spec := agg.FilterSpec{
		DateFrom: values.Get("date_from"),
		DateTo:   values.Get("date_to"),
	}

	for _, op := range values["operators"] {
		if op != "" {
			spec.Operators = append(spec.Operators, op)
		}
	}
	for _, ft := range values["fleet_types"] {
		if ft != "" {
			spec.FleetTypes = append(spec.FleetTypes, ft)
		}
	}
	for _, raw := range values["shifts"] {
		if shift, err := strconv.Atoi(raw); err == nil {
			spec.Shifts = append(spec.Shifts, shift)
		}
	}

	if raw := values.Get("hour_from"); raw != "" {
		if hour, err := strconv.Atoi(raw); err == nil {
			spec.HourFrom = &hour
		}
	}
	if raw := values.Get("hour_to"); raw != "" {
		if hour, err := strconv.Atoi(raw); err == nil {
			spec.HourTo = &hour
		}
	}

	return spec
}
