package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	InquiriesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_inquiries_created_total",
			Help: "Total number of inquiries stored, by source",
		},
		[]string{"source"},
	)

	MailSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agency_mail_sent_total",
			Help: "Total number of notification mails attempted, by template and result",
		},
		[]string{"template", "result"},
	)

	MailDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agency_mail_send_duration_seconds",
			Help:    "Duration of SMTP sends",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30},
		},
		[]string{"template"},
	)
)
