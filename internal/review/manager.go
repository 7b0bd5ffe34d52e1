package review

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/shared/storage/kv"
	"maintenance-backend/internal/shared/telemetry"
	"maintenance-backend/internal/signature"
)

// Role selects a signature block.
type Role string

const (
	RoleExecutor   Role = "executor"
	RoleSupervisor Role = "supervisor"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleExecutor, RoleSupervisor:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Stroke is one pointer-down to pointer-up path.
type Stroke []signature.Point

// Capture is a signature drawn on a surface of the given size.
type Capture struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Strokes []Stroke `json:"strokes"`
}

type session struct {
	plan  plans.Plan
	state State
}

// Manager holds the review session of the displayed plan. Opening another plan
// replaces the session; every mutation is persisted in full before it is adopted.
type Manager struct {
	Store kv.Store
	Now   func() time.Time

	mu      sync.Mutex
	session *session
}

// NewManager constructs a Manager.
func NewManager(store kv.Store) *Manager {
	return &Manager{Store: store, Now: time.Now}
}

var _ plans.ReviewOpener = (*Manager)(nil)

// Open replaces the session with plan and its persisted state. A plan that
// reuses the open plan's id still replaces it; its risk list prunes the state.
func (m *Manager) Open(ctx context.Context, plan plans.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := Load(ctx, m.Store, plan, m.now())
	if err != nil {
		return err
	}
	m.session = &session{plan: plan.Clone(), state: state}
	telemetry.Info("review.opened", map[string]any{"plan_id": plan.ID, "risks": len(plan.SafetyAnalysis)})
	return nil
}

// Snapshot returns the open plan and a copy of its state.
func (m *Manager) Snapshot(planID string) (plans.Plan, State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookup(planID)
	if err != nil {
		return plans.Plan{}, State{}, err
	}
	return s.plan.Clone(), s.state.Clone(), nil
}

// Patch applies free-text and selection changes.
func (m *Manager) Patch(ctx context.Context, planID string, p Patch) (State, error) {
	return m.mutate(ctx, planID, func(_ plans.Plan, st State) (State, error) {
		return p.Apply(st)
	})
}

// ToggleRisk flips the acknowledgement of one risk entry.
func (m *Manager) ToggleRisk(ctx context.Context, planID string, index int) (State, error) {
	return m.mutate(ctx, planID, func(plan plans.Plan, st State) (State, error) {
		if index < 0 || index >= len(plan.SafetyAnalysis) {
			return st, fmt.Errorf("%w: %d", ErrRiskOutOfRange, index)
		}
		st.CheckedRisks[index] = !st.CheckedRisks[index]
		return st, nil
	})
}

// AcknowledgeAllRisks marks every risk entry acknowledged.
func (m *Manager) AcknowledgeAllRisks(ctx context.Context, planID string) (State, error) {
	return m.mutate(ctx, planID, func(plan plans.Plan, st State) (State, error) {
		for i := range plan.SafetyAnalysis {
			st.CheckedRisks[i] = true
		}
		return st, nil
	})
}

// CaptureSignature replays the strokes on an empty pad and stores the result.
func (m *Manager) CaptureSignature(ctx context.Context, planID string, role Role, c Capture) (State, error) {
	return m.mutate(ctx, planID, func(_ plans.Plan, st State) (State, error) {
		slot, err := signatureSlot(&st, role)
		if err != nil {
			return st, err
		}
		pad := signature.NewPad(c.Width, c.Height)
		pad.Load(*slot)
		strokes := make([][]signature.Point, 0, len(c.Strokes))
		for _, s := range c.Strokes {
			strokes = append(strokes, s)
		}
		if err := pad.Replay(strokes); err != nil {
			return st, err
		}
		*slot = pad.Value()
		return st, nil
	})
}

// ClearSignature removes the stored signature so it can be drawn again.
func (m *Manager) ClearSignature(ctx context.Context, planID string, role Role) (State, error) {
	return m.mutate(ctx, planID, func(_ plans.Plan, st State) (State, error) {
		slot, err := signatureSlot(&st, role)
		if err != nil {
			return st, err
		}
		*slot = ""
		return st, nil
	})
}

func (m *Manager) mutate(ctx context.Context, planID string, fn func(plans.Plan, State) (State, error)) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookup(planID)
	if err != nil {
		return State{}, err
	}
	next, err := fn(s.plan, s.state.Clone())
	if err != nil {
		return State{}, err
	}
	if err := Save(ctx, m.Store, planID, next); err != nil {
		telemetry.Error("review.save_failed", map[string]any{"plan_id": planID, "error": err})
		return State{}, err
	}
	s.state = next
	return next.Clone(), nil
}

func (m *Manager) lookup(planID string) (*session, error) {
	if m.session == nil || m.session.plan.ID != planID {
		return nil, ErrNoSession
	}
	return m.session, nil
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func signatureSlot(st *State, role Role) (*string, error) {
	switch role {
	case RoleExecutor:
		return &st.Executor.Signature, nil
	case RoleSupervisor:
		return &st.Supervisor.Signature, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}
