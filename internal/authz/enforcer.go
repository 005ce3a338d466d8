// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package authz gates the admin tenant-registry HTTP surface (register,
// unregister, list) with a Casbin RBAC enforcer. The read surface
// (list) only requires the "viewer" role; the write surface
// requires "admin" (spec §4.1 registry operations, supplemented: the
// distilled spec is silent on who may mutate the registry over HTTP).
package authz

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Action names used against the "tenant-registry" object.
const (
	ObjectTenantRegistry = "tenant-registry"
	ActionRead           = "read"
	ActionWrite          = "write"

	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Enforcer wraps a Casbin SyncedEnforcer for the registry's RBAC checks.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// Config selects where the model/policy are loaded from. Empty paths
// fall back to the embedded defaults.
type Config struct {
	ModelPath  string
	PolicyPath string
}

// NewEnforcer builds an Enforcer, preferring on-disk model/policy files
// when cfg names them and they exist, else falling back to the
// package's embedded defaults.
func NewEnforcer(cfg Config) (*Enforcer, error) {
	m, err := loadModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("authz: build enforcer: %w", err)
	}
	return &Enforcer{enforcer: enforcer}, nil
}

func loadModel(path string) (model.Model, error) {
	if path != "" && fileExists(path) {
		return model.NewModelFromFile(path)
	}
	return model.NewModelFromString(embeddedModel)
}

func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer) error {
	return loadPolicyCSV(enforcer, embeddedPolicy)
}

// Allow reports whether role may perform act on the tenant registry.
func (e *Enforcer) Allow(role, act string) (bool, error) {
	allowed, err := e.enforcer.Enforce(role, ObjectTenantRegistry, act)
	if err != nil {
		return false, fmt.Errorf("authz: enforce: %w", err)
	}
	return allowed, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
