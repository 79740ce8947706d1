/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"sort"
	"sync"
)

var defaultRegistry = newModelRegistry()

// SQLModel is an entity type registered for automatic table creation.
// Instance returns a struct pointer compatible with Bun; Priority controls
// creation order, lower values first. Priority matters when tables carry
// foreign keys to each other.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

// ModelRegistry stores SQL models and returns them in priority order.
type ModelRegistry interface {
	Register(model SQLModel)
	Models() []SQLModel
}

type modelRegistry struct {
	models []SQLModel
	mutex  sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{models: make([]SQLModel, 0)}
}

func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = append(r.models, model)
}

func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

type modelAdapter struct {
	instance interface{}
	priority int
}

// NewModelAdapter wraps a struct instance and a priority into an SQLModel.
func NewModelAdapter(instance interface{}, priority int) SQLModel {
	return &modelAdapter{instance: instance, priority: priority}
}

func (a *modelAdapter) Instance() interface{} { return a.instance }

func (a *modelAdapter) Priority() int { return a.priority }

// RegisterModel adds a model to the default registry. Call it from an init
// function in the package that declares the entity.
func RegisterModel(model SQLModel) {
	defaultRegistry.Register(model)
}

// RegisteredModels returns all models in the default registry sorted by
// ascending priority.
func RegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

// RegisteredModelInstances returns the struct instances of all registered
// models in priority order.
func RegisteredModelInstances() []interface{} {
	models := RegisteredModels()
	instances := make([]interface{}, len(models))
	for i, model := range models {
		instances[i] = model.Instance()
	}
	return instances
}
