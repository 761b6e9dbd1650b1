/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package controller

import (
	"k8s.io/apimachinery/pkg/api/equality"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	appservicev1alpha1 "github.com/dc-tec/appslot-operator/api/v1alpha1"
)

// WebAppSlotPredicate filters WebAppSlot events so the controller only wakes
// up for meaningful changes. Status-only updates are filtered out: the
// controller writes status itself, and reacting to those writes would loop.
//
// Filtering status updates also keeps one-shot operations honest. A swap or a
// restart is never idempotent, so it must fire once per spec change
// (Generation bump) rather than on every status touch.
//
// The predicate allows reconciliation when:
//   - The resource is created or deleted
//   - The Spec changes (detected via Generation change)
//   - DeletionTimestamp changes (triggers finalizer cleanup)
//   - Finalizers, labels, or annotations change
func WebAppSlotPredicate() predicate.Predicate {
	return predicate.Funcs{
		CreateFunc: func(e event.CreateEvent) bool {
			return true
		},
		DeleteFunc: func(e event.DeleteEvent) bool {
			return true
		},
		UpdateFunc: func(e event.UpdateEvent) bool {
			oldSlot, ok := e.ObjectOld.(*appservicev1alpha1.WebAppSlot)
			if !ok {
				return true // If type assertion fails, allow reconciliation to be safe
			}
			newSlot, ok := e.ObjectNew.(*appservicev1alpha1.WebAppSlot)
			if !ok {
				return true
			}

			if oldSlot.Generation != newSlot.Generation {
				return true
			}

			if !oldSlot.DeletionTimestamp.Equal(newSlot.DeletionTimestamp) {
				return true
			}

			if !equality.Semantic.DeepEqual(oldSlot.Finalizers, newSlot.Finalizers) {
				return true
			}

			if !equality.Semantic.DeepEqual(oldSlot.Labels, newSlot.Labels) {
				return true
			}

			if !equality.Semantic.DeepEqual(oldSlot.Annotations, newSlot.Annotations) {
				return true
			}

			// Filter out status-only updates
			return false
		},
		GenericFunc: func(e event.GenericEvent) bool {
			return true
		},
	}
}
