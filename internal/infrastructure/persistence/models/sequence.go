package models

import (
	"github.com/erp/purchasing/internal/domain/sequence"
)

// SequenceModel is the persistence model for a prefix sequence.
type SequenceModel struct {
	BaseModel
	SoftDeleteModel
	Prefix   string `gorm:"type:varchar(255);not null;uniqueIndex:uk_sequences_prefix"`
	LatestID string `gorm:"type:varchar(300);not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}

// ToDomain converts the persistence model to a domain Sequence
func (m *SequenceModel) ToDomain() *sequence.Sequence {
	return &sequence.Sequence{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDeletable: m.SoftDeleteModel.ToDomain(),
		Prefix:        m.Prefix,
		LatestID:      m.LatestID,
	}
}

// FromDomain populates the persistence model from a domain Sequence
func (m *SequenceModel) FromDomain(s *sequence.Sequence) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.IsActive = s.IsActive
	m.Prefix = s.Prefix
	m.LatestID = s.LatestID
}

// SequenceModelFromDomain creates a new persistence model from domain Sequence
func SequenceModelFromDomain(s *sequence.Sequence) *SequenceModel {
	m := &SequenceModel{}
	m.FromDomain(s)
	return m
}
