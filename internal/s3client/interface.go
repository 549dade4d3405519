package s3client

import (
	"context"
)

// AccessKeyPair is one credential pair minted by the identity store. The
// secret half is only ever available at creation time.
type AccessKeyPair struct {
	AccessKeyID     string
	SecretAccessKey string
}

// EncryptionState is the observed default encryption of a bucket; a nil
// value from GetBucketEncryption means none is configured.
type EncryptionState struct {
	Algorithm string
	KMSKeyID  string
}

// PublicAccessBlockState mirrors the remote public access block settings.
type PublicAccessBlockState struct {
	BlockPublicACLs       bool
	IgnorePublicACLs      bool
	BlockPublicPolicy     bool
	RestrictPublicBuckets bool
}

// LifecycleTransitionState is one transition of a lifecycle rule.
type LifecycleTransitionState struct {
	Days         int64
	StorageClass string
}

// LifecycleRuleState is the provider-neutral form of one lifecycle rule.
type LifecycleRuleState struct {
	ID             string
	Prefix         string
	Status         string
	ExpirationDays int64
	ExpirationDate string
	Transitions    []LifecycleTransitionState
}

// CORSRuleState is the provider-neutral form of one CORS rule.
type CORSRuleState struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAgeSeconds  int64
}

// ManagedPolicy is an identity-store managed policy with its current
// default version document.
type ManagedPolicy struct {
	ARN      string
	Document string
}

// ObjectStore is the bucket-facing surface of a provider. Every method maps
// onto a single remote call and returns classified errors.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket, region string) error
	DeleteBucket(ctx context.Context, bucket string) error
	// EmptyBucket removes every object, delete marker and version.
	EmptyBucket(ctx context.Context, bucket string) error

	GetBucketVersioning(ctx context.Context, bucket string) (bool, error)
	PutBucketVersioning(ctx context.Context, bucket string, enabled bool) error

	GetBucketEncryption(ctx context.Context, bucket string) (*EncryptionState, error)
	PutBucketEncryption(ctx context.Context, bucket string, enc EncryptionState) error
	DeleteBucketEncryption(ctx context.Context, bucket string) error

	GetPublicAccessBlock(ctx context.Context, bucket string) (*PublicAccessBlockState, error)
	PutPublicAccessBlock(ctx context.Context, bucket string, pab PublicAccessBlockState) error

	GetBucketTags(ctx context.Context, bucket string) (map[string]string, error)
	PutBucketTags(ctx context.Context, bucket string, tags map[string]string) error
	DeleteBucketTags(ctx context.Context, bucket string) error

	GetBucketLifecycle(ctx context.Context, bucket string) ([]LifecycleRuleState, error)
	PutBucketLifecycle(ctx context.Context, bucket string, rules []LifecycleRuleState) error
	DeleteBucketLifecycle(ctx context.Context, bucket string) error

	GetBucketCORS(ctx context.Context, bucket string) ([]CORSRuleState, error)
	PutBucketCORS(ctx context.Context, bucket string, rules []CORSRuleState) error
	DeleteBucketCORS(ctx context.Context, bucket string) error

	// GetBucketPolicy returns the raw policy JSON, or "" when none is set.
	GetBucketPolicy(ctx context.Context, bucket string) (string, error)
	PutBucketPolicy(ctx context.Context, bucket, policyJSON string) error
	DeleteBucketPolicy(ctx context.Context, bucket string) error
}

// IdentityStore is the IAM-facing surface of a provider.
type IdentityStore interface {
	UserExists(ctx context.Context, userName string) (bool, error)
	CreateUser(ctx context.Context, userName string, tags map[string]string) error
	DeleteUser(ctx context.Context, userName string) error

	// GetUserPolicy returns the inline policy JSON, or "" when absent.
	GetUserPolicy(ctx context.Context, userName, policyName string) (string, error)
	PutUserPolicy(ctx context.Context, userName, policyName, policyJSON string) error
	DeleteUserPolicy(ctx context.Context, userName, policyName string) error

	AttachUserPolicy(ctx context.Context, userName, policyARN string) error
	DetachUserPolicy(ctx context.Context, userName, policyARN string) error

	GetManagedPolicy(ctx context.Context, policyName string) (*ManagedPolicy, error)
	CreateManagedPolicy(ctx context.Context, policyName, description, policyJSON string, tags map[string]string) (string, error)
	// UpdateManagedPolicy creates a new default version and prunes old ones.
	UpdateManagedPolicy(ctx context.Context, policyARN, policyJSON string) error
	DeleteManagedPolicy(ctx context.Context, policyARN string) error

	CreateAccessKey(ctx context.Context, userName string) (*AccessKeyPair, error)
	DeleteAccessKey(ctx context.Context, userName, accessKeyID string) error
	ListAccessKeys(ctx context.Context, userName string) ([]string, error)
}

// Client is the full provider surface used by the reconcilers.
type Client interface {
	ObjectStore
	IdentityStore

	// Probe verifies the endpoint is reachable and the credentials are
	// accepted, without mutating remote state.
	Probe(ctx context.Context) error
	// SupportsIAM reports whether the identity surface is configured.
	SupportsIAM() bool
}
