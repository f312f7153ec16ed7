package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   StatusID
		wantOK bool
	}{
		{"nuevo", StatusNew, true},
		{"Nuevo", StatusNew, true},
		{"en proceso", StatusInProgress, true},
		{"en_proceso", StatusInProgress, true},
		{"EN-PROCESO", StatusInProgress, true},
		{"resuelto", StatusResolved, true},
		{"cerrado", StatusClosed, true},
		{"pendiente", StatusPending, true},
		{"sin responder", StatusUnanswered, true},
		{"4", StatusClosed, true},
		{"0", 0, false},
		{"7", 0, false},
		{"archivado", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseStatus(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want PriorityID
	}{
		{"urgente", PriorityUrgent},
		{"critica", PriorityUrgent},
		{"alta", PriorityHigh},
		{"media", PriorityMedium},
		{"normal", PriorityMedium},
		{"baja", PriorityLow},
		{"1", PriorityUrgent},
		{"4", PriorityLow},
		{"", PriorityMedium},
		{"whatever", PriorityMedium},
	}
	for _, tt := range tests {
		if got := ParsePriority(tt.in); got != tt.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	if !StatusClosed.IsClosed() {
		t.Error("StatusClosed.IsClosed() = false")
	}
	if StatusResolved.IsClosed() {
		t.Error("StatusResolved.IsClosed() = true, resolved tickets still accept replies")
	}
	for _, s := range []StatusID{StatusNew, StatusInProgress} {
		if !s.IsOpen() {
			t.Errorf("%v.IsOpen() = false", s)
		}
	}
	for _, s := range []StatusID{StatusResolved, StatusClosed, StatusPending, StatusUnanswered} {
		if s.IsOpen() {
			t.Errorf("%v.IsOpen() = true", s)
		}
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"Administrador", RoleAdmin},
		{" ADMIN ", RoleAdmin},
		{"supervisor", RoleSupervisor},
		{"agente", RoleAgent},
		{"", RoleAgent},
		{"root", RoleAgent},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestActorView(t *testing.T) {
	tests := []struct {
		name     string
		operator Operator
		wantRole Role
	}{
		{
			name:     "role name alone",
			operator: Operator{ID: 1, RoleName: "supervisor"},
			wantRole: RoleSupervisor,
		},
		{
			name:     "admin flag wins over the role name",
			operator: Operator{ID: 1, RoleName: "agente", IsAdmin: true},
			wantRole: RoleAdmin,
		},
		{
			name:     "supervisor flag wins over a plain role name",
			operator: Operator{ID: 1, RoleName: "agente", IsSupervisor: true},
			wantRole: RoleSupervisor,
		},
		{
			name:     "supervisor flag does not demote an admin",
			operator: Operator{ID: 1, RoleName: "admin", IsSupervisor: true},
			wantRole: RoleAdmin,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.operator.ActorView(); got.Role != tt.wantRole {
				t.Errorf("ActorView().Role = %v, want %v", got.Role, tt.wantRole)
			}
		})
	}
}

func TestActorViewDepartments(t *testing.T) {
	op := Operator{
		ID: 5,
		Departments: []Department{
			{ID: 3, Name: "Soporte"},
			{ID: 0, Name: "corrupt row"},
			{ID: 8, Name: "Ventas"},
		},
	}
	actor := op.ActorView()
	if len(actor.Departments) != 2 {
		t.Fatalf("Departments = %v, want [3 8]", actor.Departments)
	}
	if !actor.InDepartment(3) || !actor.InDepartment(8) {
		t.Errorf("InDepartment misses a listed department: %v", actor.Departments)
	}
	if actor.InDepartment(0) || actor.InDepartment(9) {
		t.Error("InDepartment reports membership it should not")
	}
}

func int64ptr(v int64) *int64 { return &v }

func TestScopeDepartment(t *testing.T) {
	tests := []struct {
		name   string
		ticket Ticket
		want   int64
		wantOK bool
	}{
		{"direct department", Ticket{DepartmentID: int64ptr(4)}, 4, true},
		{"owner department fallback", Ticket{OwnerDepartmentID: int64ptr(7)}, 7, true},
		{"direct wins over fallback", Ticket{DepartmentID: int64ptr(4), OwnerDepartmentID: int64ptr(7)}, 4, true},
		{"zero ids are missing", Ticket{DepartmentID: int64ptr(0)}, 0, false},
		{"no department at all", Ticket{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ticket.ScopeDepartment()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ScopeDepartment() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTicketDecoding(t *testing.T) {
	raw := `{
		"id_ticket": 31,
		"titulo": "Impresora sin tóner",
		"id_operador": 7,
		"id_operador_emisor": null,
		"id_depto": 3,
		"id_estado": 2,
		"id_prioridad": 1,
		"estado": "En Proceso",
		"operador_nombre": "Laura",
		"usuario": {"nombre": "Cliente Uno", "email": "c1@example.com"},
		"fecha_ini": "2026-08-30T10:15:00Z",
		"mensajes": [
			{"id_msg": 5, "id_ticket": 31, "remitente_tipo": "Usuario", "contenido": "hola", "fecha_envio": "2026-08-30T10:16:00Z"}
		]
	}`

	var ticket Ticket
	if err := json.Unmarshal([]byte(raw), &ticket); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ticket.ID != 31 || ticket.Status != StatusInProgress || ticket.Priority != PriorityUrgent {
		t.Errorf("decoded ticket = %+v", ticket)
	}
	if ticket.Unassigned() {
		t.Error("Unassigned() = true for an assigned ticket")
	}
	if ticket.SenderOperatorID != nil {
		t.Error("null id_operador_emisor should decode to nil")
	}
	if dept, ok := ticket.ScopeDepartment(); !ok || dept != 3 {
		t.Errorf("ScopeDepartment() = (%d, %v), want (3, true)", dept, ok)
	}
	if len(ticket.Messages) != 1 || ticket.Messages[0].SenderType != SenderExternalUser {
		t.Errorf("messages = %+v", ticket.Messages)
	}
	want := time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC)
	if !ticket.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", ticket.CreatedAt, want)
	}
}

func TestMessageFromOperator(t *testing.T) {
	m := Message{ID: 1, SenderType: SenderOperator, SenderID: 7}
	if !m.FromOperator(7) {
		t.Error("FromOperator(7) = false")
	}
	if m.FromOperator(8) {
		t.Error("FromOperator(8) = true")
	}
	if m.FromOperator(0) {
		t.Error("FromOperator(0) = true, anonymous id must not match")
	}
	external := Message{ID: 2, SenderType: SenderExternalUser, SenderID: 7}
	if external.FromOperator(7) {
		t.Error("FromOperator matched an external-user message")
	}
}
