// Package visibility maps caller roles to query scopes. Roles form a
// closed set; each variant carries a pure predicate expressed as a GORM
// scope, so call sites never compare role strings.
package visibility

import (
	"gorm.io/gorm"

	"bedstatus-backend/internal/model"
)

// Role is one of the closed set of caller roles.
type Role int

const (
	RoleManager Role = iota
	RoleServiceScoped
	RoleCleaningStaff
	RoleMaintenanceStaff
)

// Scope is a caller's visibility: a role variant plus, for service-scoped
// callers, the set of authorized service ids.
type Scope struct {
	role     Role
	services []string
}

// Manager sees everything unmodified.
func Manager() Scope {
	return Scope{role: RoleManager}
}

// ServiceScoped restricts every query to the given services. An empty set
// matches nothing, never everything.
func ServiceScoped(serviceIDs ...string) Scope {
	return Scope{role: RoleServiceScoped, services: serviceIDs}
}

// CleaningStaff is implicitly restricted to To-Clean records.
func CleaningStaff() Scope {
	return Scope{role: RoleCleaningStaff}
}

// MaintenanceStaff is implicitly restricted to Maintenance records.
func MaintenanceStaff() Scope {
	return Scope{role: RoleMaintenanceStaff}
}

// Role returns the scope's role variant.
func (s Scope) Role() Role { return s.role }

// AllowsService reports whether the caller may act on beds of the given
// service. Only the service-scoped role restricts writes; the staff roles
// restrict what is visible, not what they may be asked to do.
func (s Scope) AllowsService(serviceID string) bool {
	if s.role != RoleServiceScoped {
		return true
	}
	for _, id := range s.services {
		if id == serviceID {
			return true
		}
	}
	return false
}

// statusOfInterest returns the status id a staff role is scoped to, or 0.
func (s Scope) statusOfInterest() int64 {
	switch s.role {
	case RoleCleaningStaff:
		return model.StatusToClean
	case RoleMaintenanceStaff:
		return model.StatusMaintenance
	}
	return 0
}

func (s Scope) serviceScope(column string) func(*gorm.DB) *gorm.DB {
	services := s.services
	return func(db *gorm.DB) *gorm.DB {
		if len(services) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(column+" IN ?", services)
	}
}

func passthrough(db *gorm.DB) *gorm.DB { return db }

// Beds returns the scope applied to bed queries. Staff roles see beds
// whose current status matches their work kind.
func (s Scope) Beds() func(*gorm.DB) *gorm.DB {
	switch s.role {
	case RoleServiceScoped:
		return s.serviceScope("beds.service_id")
	case RoleCleaningStaff, RoleMaintenanceStaff:
		status := s.statusOfInterest()
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("beds.status_id = ?", status)
		}
	}
	return passthrough
}

// History returns the scope applied to ledger queries. Staff roles see
// entries whose current or previous status matches their work kind.
func (s Scope) History() func(*gorm.DB) *gorm.DB {
	switch s.role {
	case RoleServiceScoped:
		return s.serviceScope("history_entries.service_id")
	case RoleCleaningStaff, RoleMaintenanceStaff:
		status := s.statusOfInterest()
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("history_entries.status_id = ? OR history_entries.previous_status_id = ?", status, status)
		}
	}
	return passthrough
}

// Tasks returns the scope applied to task queries. Staff roles see tasks
// of their kind.
func (s Scope) Tasks() func(*gorm.DB) *gorm.DB {
	switch s.role {
	case RoleServiceScoped:
		return s.serviceScope("task_items.service_id")
	case RoleCleaningStaff, RoleMaintenanceStaff:
		kind := s.statusOfInterest()
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("task_items.kind = ?", kind)
		}
	}
	return passthrough
}

// Services returns the scope applied to service and sector queries.
func (s Scope) Services() func(*gorm.DB) *gorm.DB {
	if s.role == RoleServiceScoped {
		return s.serviceScope("services.id")
	}
	return passthrough
}
