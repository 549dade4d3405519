/*
Copyright 2023.

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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ProviderType selects the remote object-storage flavor.
// +kubebuilder:validation:Enum=wasabi;aws;custom
type ProviderType string

const (
	ProviderTypeWasabi ProviderType = "wasabi"
	ProviderTypeAWS    ProviderType = "aws"
	ProviderTypeCustom ProviderType = "custom"
)

// ProviderAuth references the secrets holding the provider credentials.
type ProviderAuth struct {
	// +kubebuilder:validation:Required
	AccessKeySecretRef SecretKeyReference `json:"accessKeySecretRef"`
	// +kubebuilder:validation:Required
	SecretKeySecretRef SecretKeyReference `json:"secretKeySecretRef"`
	// +kubebuilder:validation:Optional
	SessionTokenSecretRef *SecretKeyReference `json:"sessionTokenSecretRef,omitempty"`
}

// TLSOptions controls TLS behavior for provider connections.
type TLSOptions struct {
	// +kubebuilder:validation:Optional
	InsecureSkipVerify bool `json:"insecureSkipVerify,omitempty"`
	// +kubebuilder:validation:Optional
	CACertSecretRef *SecretKeyReference `json:"caCertSecretRef,omitempty"`
}

// RetryPolicy bounds remote calls made on behalf of resources backed by
// this provider.
type RetryPolicy struct {
	// +kubebuilder:validation:Minimum=1
	// +kubebuilder:validation:Maximum=10
	// +kubebuilder:default=5
	// +kubebuilder:validation:Optional
	MaxAttempts int32 `json:"maxAttempts,omitempty"`
	// +kubebuilder:validation:Enum=exponential;linear
	// +kubebuilder:default=exponential
	// +kubebuilder:validation:Optional
	Backoff string `json:"backoff,omitempty"`
}

// ProviderSpec defines the desired state of Provider
type ProviderSpec struct {
	// +kubebuilder:default=custom
	// +kubebuilder:validation:Optional
	Type ProviderType `json:"type,omitempty"`
	// +kubebuilder:validation:Required
	Endpoint string `json:"endpoint"`
	// identity (IAM) endpoint; required for User, IAMPolicy and AccessKey
	// resources backed by this provider
	// +kubebuilder:validation:Optional
	IAMEndpoint string `json:"iamEndpoint,omitempty"`
	// +kubebuilder:validation:Required
	Region string `json:"region"`
	// +kubebuilder:validation:Required
	Auth ProviderAuth `json:"auth"`
	// +kubebuilder:validation:Optional
	TLS *TLSOptions `json:"tls,omitempty"`
	// +kubebuilder:default=true
	// +kubebuilder:validation:Optional
	PathStyle *bool `json:"pathStyle,omitempty"`
	// +kubebuilder:validation:Optional
	RetryPolicy *RetryPolicy `json:"retryPolicy,omitempty"`
}

// ProviderStatus defines the observed state of Provider
type ProviderStatus struct {
	Connected          bool               `json:"connected,omitempty"`
	LastConnectTime    *metav1.Time       `json:"lastConnectTime,omitempty"`
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:printcolumn:name="Endpoint",type="string",JSONPath=".spec.endpoint"
//+kubebuilder:printcolumn:name="Connected",type="boolean",JSONPath=".status.connected"

// Provider is the Schema for the providers API
type Provider struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ProviderSpec   `json:"spec,omitempty"`
	Status ProviderStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// ProviderList contains a list of Provider
type ProviderList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Provider `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Provider{}, &ProviderList{})
}
