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

// BucketPolicySpec defines the desired state of BucketPolicy
type BucketPolicySpec struct {
	// +kubebuilder:validation:Required
	BucketRef ResourceReference `json:"bucketRef"`
	// +kubebuilder:validation:Required
	Policy PolicyDocument `json:"policy"`
}

// BucketPolicyStatus defines the observed state of BucketPolicy
type BucketPolicyStatus struct {
	Applied            bool               `json:"applied,omitempty"`
	LastSyncTime       *metav1.Time       `json:"lastSyncTime,omitempty"`
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:printcolumn:name="Bucket",type="string",JSONPath=".spec.bucketRef.name"
//+kubebuilder:printcolumn:name="Applied",type="boolean",JSONPath=".status.applied"

// BucketPolicy is the Schema for the bucketpolicies API
type BucketPolicy struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BucketPolicySpec   `json:"spec,omitempty"`
	Status BucketPolicyStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// BucketPolicyList contains a list of BucketPolicy
type BucketPolicyList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []BucketPolicy `json:"items"`
}

func init() {
	SchemeBuilder.Register(&BucketPolicy{}, &BucketPolicyList{})
}
