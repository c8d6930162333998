package http

import (
	"database/sql"
	"net/http"
)

type userView struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	SchoolName string `json:"school_name,omitempty"`
	State      string `json:"state,omitempty"`
	Points     int    `json:"points"`
}

// GET /users?role=student lists accounts with points, for teachers and admins.
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, username, role, school_name, state, points FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(),
				`SELECT id, username, role, school_name, state, points FROM users WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []userView{}
		for rows.Next() {
			var u userView
			if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.SchoolName, &u.State, &u.Points); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, u)
		}
		writeJSON(w, http.StatusOK, out)
	}
}
