package models

import "time"

// Exercise — элемент библиотеки упражнений. Контент упражнений живёт в отдельной
// подсистеме, здесь нужна только read-модель для гидратации тренировок.
type Exercise struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
