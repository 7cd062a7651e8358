package repository

import "gorm.io/gorm"

// Repository aggregates every data-access interface.
type Repository struct {
	AuthUser     AuthUserRepository
	Worker       WorkerRepository
	ServiceUser  ServiceUserRepository
	Assignment   AssignmentRepository
	Holiday      HolidayRepository
	Notification NotificationRepository
	Device       DeviceRepository
	Settings     SettingsRepository
}

// NewRepository wires the GORM implementations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		AuthUser:     NewAuthUserRepo(db),
		Worker:       NewWorkerRepo(db),
		ServiceUser:  NewServiceUserRepo(db),
		Assignment:   NewAssignmentRepo(db),
		Holiday:      NewHolidayRepo(db),
		Notification: NewNotificationRepo(db),
		Device:       NewDeviceRepo(db),
		Settings:     NewSettingsRepo(db),
	}
}

// searchPattern builds an ILIKE pattern, escaping LIKE wildcards.
func searchPattern(s string) string {
	r := make([]rune, 0, len(s)+2)
	r = append(r, '%')
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(append(r, '%'))
}
