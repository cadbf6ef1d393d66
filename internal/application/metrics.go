package application

import "expvar"

// Exposed on /api/debug/vars.
var (
	appointmentMetrics = expvar.NewMap("appointments")
	rejectionMetrics   = expvar.NewMap("appointment_rejections")
)

func countRejection(err error) {
	if k := KindOf(err); k != "" {
		rejectionMetrics.Add(string(k), 1)
	}
}
