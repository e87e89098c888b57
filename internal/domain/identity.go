package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Privilege is a bit in the set of administrative capabilities a volunteer
// account may hold. Privileges are granted per account, not per event.
type Privilege uint64

const (
	PrivilegeNone Privilege = 0

	PrivilegeEventAdministrator Privilege = 1 << iota
	PrivilegeEventHotelManagement
	PrivilegeEventTrainingManagement
	PrivilegeEventScheduleManagement
	PrivilegeEventRefundRequests
	PrivilegeVolunteerAdministrator
	PrivilegeCommunicationsManagement
	PrivilegeSystemAdministrator
)

var privilegeNames = map[string]Privilege{
	"event-administrator":       PrivilegeEventAdministrator,
	"event-hotel-management":    PrivilegeEventHotelManagement,
	"event-training-management": PrivilegeEventTrainingManagement,
	"event-schedule-management": PrivilegeEventScheduleManagement,
	"event-refund-requests":     PrivilegeEventRefundRequests,
	"volunteer-administrator":   PrivilegeVolunteerAdministrator,
	"communications-management": PrivilegeCommunicationsManagement,
	"system-administrator":      PrivilegeSystemAdministrator,
}

// ParsePrivileges converts a list of privilege names into a Privilege set.
func ParsePrivileges(names []string) (Privilege, error) {
	var p Privilege
	for _, name := range names {
		bit, ok := privilegeNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return PrivilegeNone, fmt.Errorf("%w: %q", ErrInvalidPrivilege, name)
		}
		p |= bit
	}
	return p, nil
}

// Names returns the sorted privilege names contained in p.
func (p Privilege) Names() []string {
	names := make([]string, 0, len(privilegeNames))
	for name, bit := range privilegeNames {
		if p&bit != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Identity is the resolved caller of a request. A nil *Identity means the
// caller is anonymous.
type Identity struct {
	UserID     int64     `json:"userId"`
	Username   string    `json:"username"`
	Privileges Privilege `json:"privileges"`
}

// Can reports whether the identity holds every bit of the given privilege.
// System administrators implicitly hold all privileges.
func (i *Identity) Can(p Privilege) bool {
	if i == nil {
		return false
	}
	if i.Privileges&PrivilegeSystemAdministrator != 0 {
		return true
	}
	return i.Privileges&p == p
}
