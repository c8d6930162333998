package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"eval:start",
		"eval:view",
		"eval:submit",
		"practice:create",
		"tutor:ask",
		"result:view-own",
	},
	"teacher": {
		"eval:view",
		"result:view-own",
		"result:view-all",
		"users:list",
	},
	"admin": {
		"*", // everything
	},
}
