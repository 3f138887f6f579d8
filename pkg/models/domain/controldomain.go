package domain

type ControlDomain struct {
	ID           string
	Name         string
	Code         string
	Description  string
	ParentID     string
	DisplayOrder int
	IsActive     bool
	Ownership
}

type ControlDomainUpdate struct {
	Name         *string
	Description  *string
	ParentID     *string
	DisplayOrder *int
	IsActive     *bool
	UpdatedBy    string
}

type DomainNode struct {
	Domain       ControlDomain
	ControlCount int
	Children     []*DomainNode
}
