package models

// Sport представляет вид спорта (справочник).
type Sport struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
