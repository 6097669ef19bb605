package permission

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleLetterWriter Role = "letter_writer"
	RoleSignee       Role = "signee"
)

// AllRoles lists every role the service knows, in display order.
var AllRoles = []Role{RoleAdmin, RoleLetterWriter, RoleSignee}

type Permission string

const (
	CanCreateLetter      Permission = "canCreateLetter"
	CanEditDraft         Permission = "canEditDraft"
	CanDeleteDraft       Permission = "canDeleteDraft"
	CanSubmitLetter      Permission = "canSubmitLetter"
	CanViewAllLetters    Permission = "canViewAllLetters"
	CanViewOwnLetters    Permission = "canViewOwnLetters"
	CanApproveLetter     Permission = "canApproveLetter"
	CanRejectLetter      Permission = "canRejectLetter"
	CanSignLetter        Permission = "canSignLetter"
	CanCreateTemplate    Permission = "canCreateTemplate"
	CanEditTemplate      Permission = "canEditTemplate"
	CanDeleteTemplate    Permission = "canDeleteTemplate"
	CanManageUsers       Permission = "canManageUsers"
	CanAssignRoles       Permission = "canAssignRoles"
	CanConfigureWorkflow Permission = "canConfigureWorkflow"
	CanViewReports       Permission = "canViewReports"
	CanExportData        Permission = "canExportData"
)

var AllPermissions = []Permission{
	CanCreateLetter,
	CanEditDraft,
	CanDeleteDraft,
	CanSubmitLetter,
	CanViewAllLetters,
	CanViewOwnLetters,
	CanApproveLetter,
	CanRejectLetter,
	CanSignLetter,
	CanCreateTemplate,
	CanEditTemplate,
	CanDeleteTemplate,
	CanManageUsers,
	CanAssignRoles,
	CanConfigureWorkflow,
	CanViewReports,
	CanExportData,
}

// Table maps every role to its full permission set.
type Table map[Role]map[Permission]bool

// DefaultTable is the built-in role matrix.
func DefaultTable() Table {
	table := Table{}
	for _, role := range AllRoles {
		table[role] = make(map[Permission]bool, len(AllPermissions))
		for _, p := range AllPermissions {
			table[role][p] = false
		}
	}

	for _, p := range AllPermissions {
		table[RoleAdmin][p] = true
	}

	for _, p := range []Permission{CanCreateLetter, CanEditDraft, CanDeleteDraft, CanSubmitLetter, CanViewOwnLetters} {
		table[RoleLetterWriter][p] = true
	}

	for _, p := range []Permission{CanViewAllLetters, CanViewOwnLetters, CanApproveLetter, CanRejectLetter, CanSignLetter, CanViewReports} {
		table[RoleSignee][p] = true
	}

	return table
}

var displayNames = map[Role]string{
	RoleAdmin:        "Administrator",
	RoleLetterWriter: "Letter Writer",
	RoleSignee:       "Signee",
}

func DisplayName(role Role) string {
	if name, ok := displayNames[role]; ok {
		return name
	}
	return string(role)
}

// RoleInfo is the API view of one role.
type RoleInfo struct {
	Role        Role                `json:"role"`
	DisplayName string              `json:"display_name"`
	Permissions map[Permission]bool `json:"permissions"`
}
