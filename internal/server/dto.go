package server

import (
	"github.com/matzehuels/craneplan/pkg/loadunload"
	"github.com/matzehuels/craneplan/pkg/pipeline"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// BalanceRequest asks for a balance plan. Manifest is the manifest file
// text ("[01,01], {00000}, NAN" lines).
type BalanceRequest struct {
	Manifest string `json:"manifest" validate:"required"`
	Refresh  bool   `json:"refresh"`
}

// LoadRequest asks for a load/unload plan.
type LoadRequest struct {
	Manifest string         `json:"manifest" validate:"required"`
	Loads    []ContainerDTO `json:"loads" validate:"max=1000,dive"`
	Unloads  []string       `json:"unloads" validate:"max=1000,dive,required,max=256"`
	Refresh  bool           `json:"refresh"`
}

// ContainerDTO is a container to load.
type ContainerDTO struct {
	Name   string `json:"name" validate:"required,max=256"`
	Weight int    `json:"weight" validate:"gte=0,lte=99999"`
}

func (r LoadRequest) request() loadunload.Request {
	req := loadunload.Request{Unloads: r.Unloads}
	for _, c := range r.Loads {
		req.Loads = append(req.Loads, yard.Container{Name: c.Name, Weight: c.Weight})
	}
	return req
}

// VerifyRequest carries the inbound manifest a stored plan is replayed on.
// Without one the manifest is looked up in the plan cache by hash.
type VerifyRequest struct {
	Manifest string `json:"manifest,omitempty"`
}

// PlanResponse wraps a plan with delivery details.
type PlanResponse struct {
	Plan   *pipeline.Plan `json:"plan"`
	Steps  []string       `json:"steps"`
	Cached bool           `json:"cached"`
}

// VerifyResponse reports a successful replay.
type VerifyResponse struct {
	Valid     bool `json:"valid"`
	TotalTime int  `json:"total_time"`
	Moves     int  `json:"moves"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}
