package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var usersAuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "users",
	Name:      "auth_attempts_total",
	Help:      "Total number of user authentication attempts broken down by result.",
}, []string{"result"})

func recordAuthAttempt(result string) {
	usersAuthAttempts.WithLabelValues(result).Inc()
}
