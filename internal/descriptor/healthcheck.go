package descriptor

import "gopkg.in/yaml.v3"

// Healthcheck is the resolved form of a HEALTHCHECK instruction.
type Healthcheck struct {
	Cmd         string
	Interval    string
	Timeout     string
	StartPeriod string
	Retries     int
}

// HealthcheckPatch is the patch form of Healthcheck.
type HealthcheckPatch struct {
	Cmd         *string
	Interval    *string
	Timeout     *string
	StartPeriod *string
	Retries     *int
}

// Apply folds the patch into base.
func (p HealthcheckPatch) Apply(base Healthcheck) Healthcheck {
	out := base
	if p.Cmd != nil {
		out.Cmd = *p.Cmd
	}
	if p.Interval != nil {
		out.Interval = *p.Interval
	}
	if p.Timeout != nil {
		out.Timeout = *p.Timeout
	}
	if p.StartPeriod != nil {
		out.StartPeriod = *p.StartPeriod
	}
	if p.Retries != nil {
		out.Retries = *p.Retries
	}
	return out
}

// UnmarshalYAML accepts the bare command shortcut or the full struct form.
func (p *HealthcheckPatch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if strictMode {
			return rejectShortcut("healthcheck")
		}
		p.Cmd = strPtr(node.Value)
		return nil
	}
	type raw struct {
		Cmd         *string `yaml:"cmd"`
		Interval    *string `yaml:"interval"`
		Timeout     *string `yaml:"timeout"`
		StartPeriod *string `yaml:"start_period"`
		Retries     *int    `yaml:"retries"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	p.Cmd, p.Interval, p.Timeout, p.StartPeriod, p.Retries = r.Cmd, r.Interval, r.Timeout, r.StartPeriod, r.Retries
	return nil
}
