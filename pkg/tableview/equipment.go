package tableview

import (
	"context"
	"sync"

	"github.com/goliatone/go-labadmin/pkg/labapi"
)

// EquipmentAPI is the slice of the lab client the equipment panel drives.
type EquipmentAPI interface {
	EquipmentStatus(ctx context.Context, eid string) (string, error)
	EquipmentUsage(ctx context.Context, eid string) ([]labapi.MemberUsage, error)
}

// EquipmentPanel holds the two lookups of the equipment page. Status and
// usage are independent: each keeps its own result, its own error, and its
// own generation, so a failed usage fetch never clears a loaded status.
type EquipmentPanel struct {
	api EquipmentAPI

	mu        sync.Mutex
	status    string
	statusErr string
	statusGen uint64
	usage     []labapi.MemberUsage
	usageErr  string
	usageGen  uint64
}

// NewEquipmentPanel builds an empty panel.
func NewEquipmentPanel(api EquipmentAPI) *EquipmentPanel {
	return &EquipmentPanel{api: api}
}

// FetchStatus looks up one equipment id's status. Superseded fetches are
// dropped; a failure records the error message without touching usage.
func (p *EquipmentPanel) FetchStatus(ctx context.Context, eid string) {
	p.mu.Lock()
	p.statusGen++
	gen := p.statusGen
	p.mu.Unlock()

	status, err := p.api.EquipmentStatus(ctx, eid)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.statusGen {
		return
	}
	if err != nil {
		p.status = ""
		p.statusErr = err.Error()
		return
	}
	p.status = status
	p.statusErr = ""
}

// FetchUsage looks up the members using one equipment id.
func (p *EquipmentPanel) FetchUsage(ctx context.Context, eid string) {
	p.mu.Lock()
	p.usageGen++
	gen := p.usageGen
	p.mu.Unlock()

	usage, err := p.api.EquipmentUsage(ctx, eid)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.usageGen {
		return
	}
	if err != nil {
		p.usage = nil
		p.usageErr = err.Error()
		return
	}
	p.usage = usage
	p.usageErr = ""
}

// EquipmentState is an immutable copy of the panel for rendering.
type EquipmentState struct {
	Status    string
	StatusErr string
	Usage     []labapi.MemberUsage
	UsageErr  string
}

// State copies the current panel state.
func (p *EquipmentPanel) State() EquipmentState {
	p.mu.Lock()
	defer p.mu.Unlock()
	usage := make([]labapi.MemberUsage, len(p.usage))
	copy(usage, p.usage)
	return EquipmentState{
		Status:    p.status,
		StatusErr: p.statusErr,
		Usage:     usage,
		UsageErr:  p.usageErr,
	}
}
