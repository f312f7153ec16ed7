package domain

import (
	"strings"
	"time"
)

// Role enumerates operator roles. The backend serves role names as free-form
// strings; the client normalizes them into this closed set once, at session
// build time, instead of string-comparing at every call site.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleAgent      Role = "AGENT"
)

// ParseRole normalizes a backend role name. Unknown names map to Agent,
// the least privileged role.
func ParseRole(name string) Role {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin", "administrador":
		return RoleAdmin
	case "supervisor":
		return RoleSupervisor
	default:
		return RoleAgent
	}
}

// Operator is the profile served by /operadores/me.
type Operator struct {
	ID           int64        `json:"id_operador"`
	Name         string       `json:"nombre"`
	Email        string       `json:"email"`
	RoleName     string       `json:"rol"`
	IsAdmin      bool         `json:"es_admin"`
	IsSupervisor bool         `json:"es_supervisor"`
	Departments  []Department `json:"departamentos"`
	CreatedAt    time.Time    `json:"fecha_creacion"`
}

// Actor is the identity the access policy evaluates against: the logged-in
// operator reduced to what the permission rules need.
type Actor struct {
	OperatorID  int64
	Role        Role
	Departments []int64
}

// ActorView reduces an operator profile to a policy actor. The explicit
// es_admin / es_supervisor flags win over the role-name string when present.
func (o *Operator) ActorView() Actor {
	role := ParseRole(o.RoleName)
	if o.IsAdmin {
		role = RoleAdmin
	} else if o.IsSupervisor && role != RoleAdmin {
		role = RoleSupervisor
	}
	depts := make([]int64, 0, len(o.Departments))
	for _, d := range o.Departments {
		if d.ID != 0 {
			depts = append(depts, d.ID)
		}
	}
	return Actor{OperatorID: o.ID, Role: role, Departments: depts}
}

// InDepartment reports membership in the given department.
func (a Actor) InDepartment(departmentID int64) bool {
	for _, id := range a.Departments {
		if id == departmentID {
			return true
		}
	}
	return false
}
