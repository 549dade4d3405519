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

// VersioningConfig controls bucket object versioning.
type VersioningConfig struct {
	Enabled bool `json:"enabled,omitempty"`
	// +kubebuilder:validation:Optional
	MFADelete bool `json:"mfaDelete,omitempty"`
}

// EncryptionConfig controls default server-side encryption.
type EncryptionConfig struct {
	Enabled bool `json:"enabled,omitempty"`
	// +kubebuilder:default=AES256
	// +kubebuilder:validation:Optional
	Algorithm string `json:"algorithm,omitempty"`
	// +kubebuilder:validation:Optional
	KMSKeyID string `json:"kmsKeyId,omitempty"`
}

// PublicAccessBlockConfig mirrors the S3 public access block settings.
type PublicAccessBlockConfig struct {
	BlockPublicACLs       bool `json:"blockPublicAcls,omitempty"`
	IgnorePublicACLs      bool `json:"ignorePublicAcls,omitempty"`
	BlockPublicPolicy     bool `json:"blockPublicPolicy,omitempty"`
	RestrictPublicBuckets bool `json:"restrictPublicBuckets,omitempty"`
}

// LifecycleExpiration expires objects after a number of days or at a date.
type LifecycleExpiration struct {
	// +kubebuilder:validation:Optional
	Days int32 `json:"days,omitempty"`
	// +kubebuilder:validation:Optional
	Date string `json:"date,omitempty"`
}

// LifecycleTransition moves objects to another storage class.
type LifecycleTransition struct {
	Days         int32  `json:"days"`
	StorageClass string `json:"storageClass"`
}

// LifecycleRule is one rule of the bucket lifecycle configuration.
type LifecycleRule struct {
	// +kubebuilder:validation:Required
	ID string `json:"id"`
	// +kubebuilder:validation:Optional
	Prefix string `json:"prefix,omitempty"`
	// +kubebuilder:validation:Enum=Enabled;Disabled
	// +kubebuilder:default=Enabled
	// +kubebuilder:validation:Optional
	Status string `json:"status,omitempty"`
	// +kubebuilder:validation:Optional
	Expiration *LifecycleExpiration `json:"expiration,omitempty"`
	// +kubebuilder:validation:Optional
	Transitions []LifecycleTransition `json:"transitions,omitempty"`
}

// LifecycleConfig is the set of lifecycle rules; an empty, non-nil rule set
// removes any remote lifecycle configuration.
type LifecycleConfig struct {
	Rules []LifecycleRule `json:"rules"`
}

// CORSRule is one rule of the bucket CORS configuration.
type CORSRule struct {
	// +kubebuilder:validation:MinItems=1
	AllowedOrigins []string `json:"allowedOrigins"`
	// +kubebuilder:validation:MinItems=1
	AllowedMethods []string `json:"allowedMethods"`
	// +kubebuilder:validation:Optional
	AllowedHeaders []string `json:"allowedHeaders,omitempty"`
	// +kubebuilder:validation:Optional
	ExposedHeaders []string `json:"exposedHeaders,omitempty"`
	// +kubebuilder:validation:Optional
	MaxAgeSeconds int32 `json:"maxAgeSeconds,omitempty"`
}

// CORSConfig is the set of CORS rules; an empty, non-nil rule set removes
// any remote CORS configuration.
type CORSConfig struct {
	Rules []CORSRule `json:"rules"`
}

// TaggingConfig carries the desired bucket tags.
type TaggingConfig struct {
	Tags map[string]string `json:"tags,omitempty"`
}

// AutoManageConfig turns on companion User/BucketPolicy/AccessKey
// provisioning for turnkey bucket access.
type AutoManageConfig struct {
	Enabled bool `json:"enabled,omitempty"`
	// IAM user name; defaults to the bucket name
	// +kubebuilder:validation:Optional
	UserName string `json:"userName,omitempty"`
	// +kubebuilder:validation:Enum=readonly;readwrite;full
	// +kubebuilder:default=readwrite
	// +kubebuilder:validation:Optional
	AccessLevel string `json:"accessLevel,omitempty"`
	// +kubebuilder:validation:Optional
	Rotation *RotationConfig `json:"rotation,omitempty"`
}

// BucketSpec defines the desired state of Bucket
type BucketSpec struct {
	// +kubebuilder:validation:Required
	ProviderRef ResourceReference `json:"providerRef"`
	// remote bucket name; DNS-compliant and immutable once the bucket has
	// been created
	// +kubebuilder:validation:Pattern=`^[a-z0-9]([a-z0-9.-]*[a-z0-9])?$`
	// +kubebuilder:validation:MinLength=3
	// +kubebuilder:validation:MaxLength=63
	Name string `json:"name"`
	// overrides the provider region for this bucket
	// +kubebuilder:validation:Optional
	Region string `json:"region,omitempty"`
	// +kubebuilder:validation:Optional
	Versioning *VersioningConfig `json:"versioning,omitempty"`
	// +kubebuilder:validation:Optional
	Encryption *EncryptionConfig `json:"encryption,omitempty"`
	// +kubebuilder:validation:Optional
	PublicAccessBlock *PublicAccessBlockConfig `json:"publicAccessBlock,omitempty"`
	// +kubebuilder:validation:Optional
	Lifecycle *LifecycleConfig `json:"lifecycle,omitempty"`
	// +kubebuilder:validation:Optional
	CORS *CORSConfig `json:"cors,omitempty"`
	// +kubebuilder:validation:Optional
	Tagging *TaggingConfig `json:"tagging,omitempty"`
	// +kubebuilder:validation:Optional
	AutoManage *AutoManageConfig `json:"autoManage,omitempty"`
	// +kubebuilder:validation:Enum=Retain;Delete
	// +kubebuilder:default=Retain
	// +kubebuilder:validation:Optional
	DeletionPolicy string `json:"deletionPolicy,omitempty"`
	// empty the bucket before deleting it when deletionPolicy is Delete
	// +kubebuilder:validation:Optional
	ForceDelete bool `json:"forceDelete,omitempty"`
}

// BucketStatus defines the observed state of Bucket
type BucketStatus struct {
	Exists bool `json:"exists,omitempty"`
	// remote name the bucket was created under; guards rename attempts
	BucketName         string             `json:"bucketName,omitempty"`
	ARN                string             `json:"arn,omitempty"`
	LastSyncTime       *metav1.Time       `json:"lastSyncTime,omitempty"`
	CredentialsSecret  string             `json:"credentialsSecret,omitempty"`
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}

//+kubebuilder:object:root=true
//+kubebuilder:subresource:status
//+kubebuilder:printcolumn:name="Bucket",type="string",JSONPath=".spec.name"
//+kubebuilder:printcolumn:name="Exists",type="boolean",JSONPath=".status.exists"

// Bucket is the Schema for the buckets API
type Bucket struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BucketSpec   `json:"spec,omitempty"`
	Status BucketStatus `json:"status,omitempty"`
}

//+kubebuilder:object:root=true

// BucketList contains a list of Bucket
type BucketList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Bucket `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Bucket{}, &BucketList{})
}
