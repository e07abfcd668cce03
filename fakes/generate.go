package fakes

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o fake_provisioner.go ../provisioner Provisioner
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o fake_metric_fetcher.go ../metricscollector MetricFetcher
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o fake_decision_db.go ../db DecisionDB
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o fake_leader_gate.go ../scalingengine LeaderGate
