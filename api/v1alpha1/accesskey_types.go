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

// AccessKeySpec defines the desired state of AccessKey
type AccessKeySpec struct {
	// +kubebuilder:validation:Required
	ProviderRef ResourceReference `json:"providerRef"`
	// the User resource this key belongs to; must be Ready
	// +kubebuilder:validation:Required
	UserRef ResourceReference `json:"userRef"`
	// +kubebuilder:validation:Optional
	DisplayName string `json:"displayName,omitempty"`
	// +kubebuilder:validation:Optional
	Policy *PolicyDocument `json:"policy,omitempty"`
	// +kubebuilder:validation:Optional
	Tags map[string]string `json:"tags,omitempty"`
	// +kubebuilder:validation:Optional
	Rotation *RotationConfig `json:"rotation,omitempty"`
}

// AccessKeyStatus defines the observed state of AccessKey. The secret part
// of the credential pair is never stored here; it lives only in the
// generated Secret.
type AccessKeyStatus struct {
	AccessKeyID    string       `json:"accessKeyId,omitempty"`
	Created        bool         `json:"created,omitempty"`
	LastRotateTime *metav1.Time `json:"lastRotateTime,omitempty"`
	NextRotateTime *metav1.Time `json:"nextRotateTime,omitempty"`
	// rotated-out keys still inside their retention window, oldest first
	// +kubebuilder:validation:MaxItems=32
	PreviousKeys       []RetiredKey       `json:"previousKeys,omitempty"`
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:printcolumn:name="KeyID",type="string",JSONPath=".status.accessKeyId"
//+kubebuilder:printcolumn:name="NextRotate",type="string",JSONPath=".status.nextRotateTime"

// AccessKey is the Schema for the accesskeys API
type AccessKey struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AccessKeySpec   `json:"spec,omitempty"`
	Status AccessKeyStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// AccessKeyList contains a list of AccessKey
type AccessKeyList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AccessKey `json:"items"`
}

func init() {
	SchemeBuilder.Register(&AccessKey{}, &AccessKeyList{})
}
