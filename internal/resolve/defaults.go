package resolve

import "github.com/dofigen/dofigen-go/internal/descriptor"

const (
	defaultUser            = "1000"
	defaultHealthInterval  = "30s"
	defaultHealthTimeout   = "30s"
	defaultHealthStart     = "0s"
	defaultHealthRetries   = 3
	defaultPortProtocol    = "tcp"
)

// applyStageDefaults fills in the implicit defaults:
// user 1000 unless the stage builds FROM scratch, healthcheck timing
// defaults, and port protocol tcp.
func applyStageDefaults(s descriptor.Stage) descriptor.Stage {
	out := s
	if out.User == nil && !isScratch(s.From) {
		out.User = &descriptor.User{User: defaultUser}
	}
	if out.Healthcheck != nil {
		hc := *out.Healthcheck
		if hc.Interval == "" {
			hc.Interval = defaultHealthInterval
		}
		if hc.Timeout == "" {
			hc.Timeout = defaultHealthTimeout
		}
		if hc.StartPeriod == "" {
			hc.StartPeriod = defaultHealthStart
		}
		if hc.Retries == 0 {
			hc.Retries = defaultHealthRetries
		}
		out.Healthcheck = &hc
	}
	if len(out.Expose) > 0 {
		ports := make([]descriptor.Port, len(out.Expose))
		for i, p := range out.Expose {
			if p.Protocol == "" {
				p.Protocol = defaultPortProtocol
			}
			ports[i] = p
		}
		out.Expose = ports
	}
	return out
}

func isScratch(from descriptor.FromContext) bool {
	return from.Kind == descriptor.FromImage && from.Image.Path == "scratch" && from.Image.Host == ""
}
