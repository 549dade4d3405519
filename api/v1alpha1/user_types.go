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

// UserSpec defines the desired state of User. Policy and PolicyRef are
// mutually exclusive; setting both is a validation error.
type UserSpec struct {
	// +kubebuilder:validation:Required
	ProviderRef ResourceReference `json:"providerRef"`
	// IAM user name
	// +kubebuilder:validation:Required
	Name string `json:"name"`
	// inline policy attached to the user
	// +kubebuilder:validation:Optional
	Policy *PolicyDocument `json:"policy,omitempty"`
	// reference to a reusable IAMPolicy
	// +kubebuilder:validation:Optional
	PolicyRef *ResourceReference `json:"policyRef,omitempty"`
	// +kubebuilder:validation:Optional
	Tags map[string]string `json:"tags,omitempty"`
}

// UserStatus defines the observed state of User
type UserStatus struct {
	Created            bool               `json:"created,omitempty"`
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:printcolumn:name="User",type="string",JSONPath=".spec.name"
//+kubebuilder:printcolumn:name="Created",type="boolean",JSONPath=".status.created"

// User is the Schema for the users API
type User struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   UserSpec   `json:"spec,omitempty"`
	Status UserStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// UserList contains a list of User
type UserList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []User `json:"items"`
}

func init() {
	SchemeBuilder.Register(&User{}, &UserList{})
}
