package repos

import "gorm.io/gorm"

type GormWrapper interface {
	Error() error
	Create(interface{}) GormWrapper
	Save(interface{}) GormWrapper
	Order(interface{}) GormWrapper
	Limit(int) GormWrapper
	Find(interface{}, ...interface{}) GormWrapper
}

type wrapper struct {
	db *gorm.DB
}

func Wrap(db *gorm.DB) GormWrapper {
	return &wrapper{
		db: db,
	}
}

func (w *wrapper) Error() error {
	return w.db.Error
}

func (w *wrapper) Create(value interface{}) GormWrapper {
	return &wrapper{db: w.db.Create(value)}
}

func (w *wrapper) Save(value interface{}) GormWrapper {
	return &wrapper{db: w.db.Save(value)}
}

func (w *wrapper) Order(value interface{}) GormWrapper {
	return &wrapper{db: w.db.Order(value)}
}

func (w *wrapper) Limit(limit int) GormWrapper {
	return &wrapper{db: w.db.Limit(limit)}
}

func (w *wrapper) Find(dest interface{}, conds ...interface{}) GormWrapper {
	return &wrapper{db: w.db.Find(dest, conds...)}
}
