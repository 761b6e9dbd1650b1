package webappslot

import (
	"time"

	"golang.org/x/time/rate"
	"k8s.io/client-go/util/workqueue"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller"

	appservicev1alpha1 "github.com/dc-tec/appslot-operator/api/v1alpha1"
	controllerutil "github.com/dc-tec/appslot-operator/internal/controller"
)

// SetupWithManager registers the WebAppSlot controller with the Manager.
//
// The rate limiter combines per-item exponential backoff with an overall
// token bucket so a burst of failing slots cannot hammer the ARM API, which
// throttles aggressively.
func (r *WebAppSlotReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&appservicev1alpha1.WebAppSlot{}).
		WithEventFilter(controllerutil.WebAppSlotPredicate()).
		WithOptions(controller.Options{
			MaxConcurrentReconciles: 2,
			RateLimiter: workqueue.NewTypedMaxOfRateLimiter(
				workqueue.NewTypedItemExponentialFailureRateLimiter[ctrl.Request](2*time.Second, 120*time.Second),
				&workqueue.TypedBucketRateLimiter[ctrl.Request]{Limiter: rate.NewLimiter(rate.Limit(5), 50)},
			),
		}).
		Named(controllerName).
		Complete(r)
}
