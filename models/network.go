package models

import "time"

// Network is a node in the commercial hierarchy (region → country → reseller).
// Every network has at most one parent, so the networks form a forest.
type Network struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Code            string `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Name            string `json:"name" gorm:"not null"`
	ParentNetworkID *uint  `json:"parent_network_id" gorm:"index"`

	ParentNetwork *Network  `json:"parent_network,omitempty" gorm:"foreignKey:ParentNetworkID"`
	ChildNetworks []Network `json:"child_networks,omitempty" gorm:"foreignKey:ParentNetworkID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
