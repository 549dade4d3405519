package consts

const (
	Domain = "s3.cloud37.dev"

	Finalizer = Domain + "/finalizer"

	// Secret data keys for generated credential Secrets.
	DataKeyAccessKeyID     = "access-key-id"
	DataKeySecretAccessKey = "secret-access-key"

	LabelManagedBy      = Domain + "/managed-by"
	LabelAccessKeyName  = Domain + "/access-key-name"
	LabelPreviousSecret = Domain + "/previous-secret"
	LabelRotatedAt      = Domain + "/rotated-at"

	ManagedByValue = "s3-operator"

	// Condition types shared across the resource kinds.
	ConditionReady             = "Ready"
	ConditionAuthValid         = "AuthValid"
	ConditionEndpointReachable = "EndpointReachable"
	ConditionProviderNotReady  = "ProviderNotReady"
	ConditionBucketNotReady    = "BucketNotReady"
	ConditionUserNotReady      = "UserNotReady"
	ConditionCreationFailed    = "CreationFailed"
	ConditionPolicyInvalid     = "PolicyInvalid"
	ConditionPolicyConflict    = "PolicyConflict"
	ConditionApplyFailed       = "ApplyFailed"
	ConditionRotationFailed    = "RotationFailed"
	ConditionDependenciesExist = "DependenciesExist"
	ConditionDegraded          = "Degraded"

	// Common condition reasons.
	ReasonReconcileSuccess = "ReconcileSuccess"
	ReasonReconcileError   = "ReconcileError"
	ReasonValidationFailed = "ValidationFailed"
	ReasonDependencyWait   = "DependencyWait"
	ReasonRemoteError      = "RemoteError"
	ReasonDriftCorrected   = "DriftCorrected"

	DeletionPolicyRetain = "Retain"
	DeletionPolicyDelete = "Delete"

	AccessLevelReadOnly  = "readonly"
	AccessLevelReadWrite = "readwrite"
	AccessLevelFull      = "full"

	BucketNameImmutableErrMessage = "bucket name is immutable once created"
	PolicySourceXORErrMessage     = "policy and policyRef are mutually exclusive"
)

// Action sets granted per auto-management access level.
var AccessLevelActions = map[string][]string{
	AccessLevelReadOnly:  {"s3:GetObject", "s3:ListBucket"},
	AccessLevelReadWrite: {"s3:GetObject", "s3:PutObject", "s3:DeleteObject", "s3:ListBucket"},
	AccessLevelFull:      {"s3:*"},
}
