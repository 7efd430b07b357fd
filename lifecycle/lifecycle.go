// Package lifecycle owns the equipment state machine. Every ledger asks it
// whether an event is legal from the equipment's current status and active
// link, and writes back whatever Change it returns.
package lifecycle

import (
	"ong_equipment_tool/apperr"
	"ong_equipment_tool/models"
)

type Event string

const (
	EventLoan             Event = "loan"
	EventLoanReturn       Event = "loan-return"
	EventAssign           Event = "assign"
	EventReassignOut      Event = "reassign-out"
	EventRelease          Event = "release"
	EventDonate           Event = "donate"
	EventMaintenanceStart Event = "maintenance-start"
	EventMaintenanceEnd   Event = "maintenance-end"
	EventMaintenanceAbort Event = "maintenance-cancel"
	EventOverride         Event = "override"
)

// Transition describes one event against one equipment. RefID is the id of
// the ledger entry driving the event.
type Transition struct {
	Event     Event
	RefID     string
	Condition models.ReleaseCondition // release only
	Target    models.EquipmentStatus  // override only
}

// Change is the new equipment state. Apply is false when the event is legal
// but leaves the equipment as it is.
type Change struct {
	Apply       bool
	Status      models.EquipmentStatus
	ActiveKind  models.ActiveKind
	ActiveRefID *string
}

func hold(status models.EquipmentStatus, kind models.ActiveKind, ref string) Change {
	return Change{Apply: true, Status: status, ActiveKind: kind, ActiveRefID: &ref}
}

func free(status models.EquipmentStatus) Change {
	return Change{Apply: true, Status: status, ActiveKind: models.ActiveNone}
}

var overridable = map[models.EquipmentStatus]bool{
	models.StatusAvailable:     true,
	models.StatusDamaged:       true,
	models.StatusInMaintenance: true,
}

// Next validates t against eq and returns the resulting state. Illegal
// transitions are Conflicts.
func Next(eq *models.Equipment, t Transition) (Change, error) {
	switch t.Event {
	case EventMaintenanceEnd, EventMaintenanceAbort:
		// 已捐赠的设备不再改状态，但工单仍可关闭
		if eq.Status == models.StatusDonated {
			return Change{}, nil
		}
	default:
		if eq.Status == models.StatusDonated {
			return Change{}, apperr.Conflict("equipment %s was donated", eq.Code)
		}
	}

	switch t.Event {
	case EventLoan:
		if eq.Status != models.StatusAvailable || !eq.Idle() {
			return Change{}, unavailable(eq)
		}
		return hold(models.StatusLoaned, models.ActiveLoan, t.RefID), nil

	case EventAssign:
		if eq.Status != models.StatusAvailable || !eq.Idle() {
			return Change{}, unavailable(eq)
		}
		return hold(models.StatusAssigned, models.ActiveAssignment, t.RefID), nil

	case EventLoanReturn:
		if eq.Status != models.StatusLoaned || !eq.HeldBy(models.ActiveLoan, t.RefID) {
			return Change{}, apperr.Conflict("equipment %s is not held by loan %s", eq.Code, t.RefID)
		}
		return free(models.StatusAvailable), nil

	case EventReassignOut:
		if err := heldByAssignment(eq, t.RefID); err != nil {
			return Change{}, err
		}
		return free(models.StatusAvailable), nil

	case EventRelease:
		if err := heldByAssignment(eq, t.RefID); err != nil {
			return Change{}, err
		}
		return free(AfterRelease(t.Condition)), nil

	case EventDonate:
		if err := heldByAssignment(eq, t.RefID); err != nil {
			return Change{}, err
		}
		return free(models.StatusDonated), nil

	case EventMaintenanceStart:
		if !eq.Idle() {
			return Change{}, apperr.Conflict("equipment %s is held by an active %s", eq.Code, eq.ActiveKind)
		}
		if eq.Status != models.StatusAvailable && eq.Status != models.StatusInMaintenance && eq.Status != models.StatusDamaged {
			return Change{}, unavailable(eq)
		}
		return hold(models.StatusInMaintenance, models.ActiveMaintenance, t.RefID), nil

	case EventMaintenanceEnd:
		if eq.HeldBy(models.ActiveMaintenance, t.RefID) {
			return free(models.StatusAvailable), nil
		}
		if eq.Idle() && (eq.Status == models.StatusInMaintenance || eq.Status == models.StatusDamaged) {
			return free(models.StatusAvailable), nil
		}
		return Change{}, nil

	case EventMaintenanceAbort:
		if eq.HeldBy(models.ActiveMaintenance, t.RefID) {
			return free(models.StatusAvailable), nil
		}
		return Change{}, nil

	case EventOverride:
		if !eq.Idle() {
			return Change{}, apperr.Conflict("equipment %s is held by an active %s", eq.Code, eq.ActiveKind)
		}
		if !overridable[eq.Status] {
			return Change{}, apperr.Conflict("status %s cannot be overridden", eq.Status)
		}
		if !overridable[t.Target] {
			return Change{}, apperr.BadRequest("status %s cannot be set manually", t.Target)
		}
		return free(t.Target), nil
	}

	return Change{}, apperr.BadRequest("unknown event %q", t.Event)
}

// AfterRelease maps the condition equipment comes back in to its next status.
func AfterRelease(c models.ReleaseCondition) models.EquipmentStatus {
	if c == models.ConditionDamaged || c == models.ConditionFair {
		return models.StatusInMaintenance
	}
	return models.StatusAvailable
}

func heldByAssignment(eq *models.Equipment, ref string) error {
	if eq.Status != models.StatusAssigned || !eq.HeldBy(models.ActiveAssignment, ref) {
		return apperr.Conflict("equipment %s is not held by assignment %s", eq.Code, ref)
	}
	return nil
}

func unavailable(eq *models.Equipment) error {
	return apperr.Conflict("equipment %s is %s", eq.Code, eq.Status)
}
