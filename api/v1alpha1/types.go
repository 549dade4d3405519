package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ResourceReference points at another object by name, optionally in another
// namespace. Resolution defaults to the referencing object's namespace.
type ResourceReference struct {
	// +kubebuilder:validation:Required
	Name string `json:"name"`
	// +kubebuilder:validation:Optional
	Namespace string `json:"namespace,omitempty"`
}

// SecretKeyReference selects a single key of a Secret in the same namespace.
type SecretKeyReference struct {
	// +kubebuilder:validation:Required
	Name string `json:"name"`
	// +kubebuilder:validation:Optional
	Key string `json:"key,omitempty"`
}

// PolicyDocument is an IAM-style policy document. It is compared against
// remote state in a semantically normalized form, so key order and
// whitespace never count as drift.
type PolicyDocument struct {
	// +kubebuilder:default="2012-10-17"
	// +kubebuilder:validation:Optional
	Version string `json:"version,omitempty"`
	// +kubebuilder:validation:MinItems=1
	Statement []PolicyStatement `json:"statement"`
}

// PolicyStatement is a single statement of a PolicyDocument.
type PolicyStatement struct {
	// +kubebuilder:validation:Optional
	SID string `json:"sid,omitempty"`
	// +kubebuilder:validation:Enum=Allow;Deny
	Effect string `json:"effect"`
	// principal as an ARN or wildcard; bucket policies require it,
	// user inline policies omit it
	// +kubebuilder:validation:Optional
	Principal string `json:"principal,omitempty"`
	// +kubebuilder:validation:MinItems=1
	Action []string `json:"action"`
	// +kubebuilder:validation:MinItems=1
	Resource []string `json:"resource"`
	// +kubebuilder:validation:Optional
	Condition map[string]map[string]string `json:"condition,omitempty"`
}

// RotationConfig declares time-boxed access key rotation with retention of
// superseded credentials.
type RotationConfig struct {
	// +kubebuilder:validation:Optional
	Enabled bool `json:"enabled,omitempty"`
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:validation:Maximum=365
	// +kubebuilder:default=90
	// +kubebuilder:validation:Optional
	IntervalDays int32 `json:"intervalDays,omitempty"`
	// days a rotated-out credential stays valid before it is deleted from
	// the provider; 0 deletes it at rotation time
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:validation:Maximum=30
	// +kubebuilder:default=7
	// +kubebuilder:validation:Optional
	PreviousKeysRetentionDays int32 `json:"previousKeysRetentionDays,omitempty"`
}

// RetiredKey records one rotated-out access key until its retention window
// expires.
type RetiredKey struct {
	AccessKeyID string      `json:"accessKeyId"`
	SecretName  string      `json:"secretName"`
	RetiredAt   metav1.Time `json:"retiredAt"`
}
