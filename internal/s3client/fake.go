package s3client

import (
	"context"
	"fmt"
	"sync"
)

// FakeBucket is the in-memory remote state of one bucket.
type FakeBucket struct {
	Region     string
	Versioning bool
	Encryption *EncryptionState
	PAB        *PublicAccessBlockState
	Tags       map[string]string
	Lifecycle  []LifecycleRuleState
	CORS       []CORSRuleState
	Policy     string
	// simulated object count; DeleteBucket fails while non-zero
	Objects int
}

// FakeUser is the in-memory remote state of one IAM user.
type FakeUser struct {
	Tags           map[string]string
	InlinePolicies map[string]string
	Attached       map[string]bool
	AccessKeys     map[string]string
}

type fakeManagedPolicy struct {
	arn      string
	document string
}

// Fake is an in-memory Client with call recording and one-shot failure
// injection, for handler tests.
type Fake struct {
	mu sync.Mutex

	Buckets  map[string]*FakeBucket
	Users    map[string]*FakeUser
	policies map[string]*fakeManagedPolicy

	calls      []string
	failures   map[string]error
	keyCounter int

	ProbeErr    error
	IAMDisabled bool
}

var _ Client = &Fake{}

func NewFake() *Fake {
	return &Fake{
		Buckets:  map[string]*FakeBucket{},
		Users:    map[string]*FakeUser{},
		policies: map[string]*fakeManagedPolicy{},
		failures: map[string]error{},
	}
}

// FailOnce makes the next call to method return err.
func (f *Fake) FailOnce(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

// Calls returns the ordered method names invoked so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount counts invocations of the given method.
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// ResetCalls clears the recorded call log without touching state.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *Fake) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	if err, ok := f.failures[method]; ok {
		delete(f.failures, method)
		return err
	}
	return nil
}

func (f *Fake) SupportsIAM() bool { return !f.IAMDisabled }

func (f *Fake) identityCheck() error {
	if f.IAMDisabled {
		return ErrIAMUnsupported
	}
	return nil
}

func (f *Fake) Probe(ctx context.Context) error {
	if err := f.record("Probe"); err != nil {
		return err
	}
	return f.ProbeErr
}

func (f *Fake) bucket(name string) (*FakeBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.Buckets[name]
	if !ok {
		return nil, fmt.Errorf("%w: bucket %s", ErrNotFound, name)
	}
	return b, nil
}

func (f *Fake) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if err := f.record("BucketExists"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Buckets[bucket]
	return ok, nil
}

func (f *Fake) CreateBucket(ctx context.Context, bucket, region string) error {
	if err := f.record("CreateBucket"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Buckets[bucket]; ok {
		return fmt.Errorf("%w: bucket %s", ErrAlreadyExists, bucket)
	}
	f.Buckets[bucket] = &FakeBucket{Region: region}
	return nil
}

func (f *Fake) DeleteBucket(ctx context.Context, bucket string) error {
	if err := f.record("DeleteBucket"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.Buckets[bucket]
	if !ok {
		return fmt.Errorf("%w: bucket %s", ErrNotFound, bucket)
	}
	if b.Objects > 0 {
		return fmt.Errorf("%w: BucketNotEmpty", ErrInvalidArgument)
	}
	delete(f.Buckets, bucket)
	return nil
}

func (f *Fake) EmptyBucket(ctx context.Context, bucket string) error {
	if err := f.record("EmptyBucket"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b.Objects = 0
	return nil
}

func (f *Fake) GetBucketVersioning(ctx context.Context, bucket string) (bool, error) {
	if err := f.record("GetBucketVersioning"); err != nil {
		return false, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return false, err
	}
	return b.Versioning, nil
}

func (f *Fake) PutBucketVersioning(ctx context.Context, bucket string, enabled bool) error {
	if err := f.record("PutBucketVersioning"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Versioning = enabled
	return nil
}

func (f *Fake) GetBucketEncryption(ctx context.Context, bucket string) (*EncryptionState, error) {
	if err := f.record("GetBucketEncryption"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return b.Encryption, nil
}

func (f *Fake) PutBucketEncryption(ctx context.Context, bucket string, enc EncryptionState) error {
	if err := f.record("PutBucketEncryption"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Encryption = &enc
	return nil
}

func (f *Fake) DeleteBucketEncryption(ctx context.Context, bucket string) error {
	if err := f.record("DeleteBucketEncryption"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Encryption = nil
	return nil
}

func (f *Fake) GetPublicAccessBlock(ctx context.Context, bucket string) (*PublicAccessBlockState, error) {
	if err := f.record("GetPublicAccessBlock"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return b.PAB, nil
}

func (f *Fake) PutPublicAccessBlock(ctx context.Context, bucket string, pab PublicAccessBlockState) error {
	if err := f.record("PutPublicAccessBlock"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.PAB = &pab
	return nil
}

func (f *Fake) GetBucketTags(ctx context.Context, bucket string) (map[string]string, error) {
	if err := f.record("GetBucketTags"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return b.Tags, nil
}

func (f *Fake) PutBucketTags(ctx context.Context, bucket string, tags map[string]string) error {
	if err := f.record("PutBucketTags"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Tags = tags
	return nil
}

func (f *Fake) DeleteBucketTags(ctx context.Context, bucket string) error {
	if err := f.record("DeleteBucketTags"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Tags = nil
	return nil
}

func (f *Fake) GetBucketLifecycle(ctx context.Context, bucket string) ([]LifecycleRuleState, error) {
	if err := f.record("GetBucketLifecycle"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return b.Lifecycle, nil
}

func (f *Fake) PutBucketLifecycle(ctx context.Context, bucket string, rules []LifecycleRuleState) error {
	if err := f.record("PutBucketLifecycle"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Lifecycle = rules
	return nil
}

func (f *Fake) DeleteBucketLifecycle(ctx context.Context, bucket string) error {
	if err := f.record("DeleteBucketLifecycle"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Lifecycle = nil
	return nil
}

func (f *Fake) GetBucketCORS(ctx context.Context, bucket string) ([]CORSRuleState, error) {
	if err := f.record("GetBucketCORS"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return b.CORS, nil
}

func (f *Fake) PutBucketCORS(ctx context.Context, bucket string, rules []CORSRuleState) error {
	if err := f.record("PutBucketCORS"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.CORS = rules
	return nil
}

func (f *Fake) DeleteBucketCORS(ctx context.Context, bucket string) error {
	if err := f.record("DeleteBucketCORS"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.CORS = nil
	return nil
}

func (f *Fake) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	if err := f.record("GetBucketPolicy"); err != nil {
		return "", err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return "", err
	}
	return b.Policy, nil
}

func (f *Fake) PutBucketPolicy(ctx context.Context, bucket, policyJSON string) error {
	if err := f.record("PutBucketPolicy"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Policy = policyJSON
	return nil
}

func (f *Fake) DeleteBucketPolicy(ctx context.Context, bucket string) error {
	if err := f.record("DeleteBucketPolicy"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Policy = ""
	return nil
}

func (f *Fake) user(name string) (*FakeUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.Users[name]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, name)
	}
	return u, nil
}

func (f *Fake) UserExists(ctx context.Context, userName string) (bool, error) {
	if err := f.identityCheck(); err != nil {
		return false, err
	}
	if err := f.record("UserExists"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Users[userName]
	return ok, nil
}

func (f *Fake) CreateUser(ctx context.Context, userName string, tags map[string]string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("CreateUser"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Users[userName]; ok {
		return fmt.Errorf("%w: user %s", ErrAlreadyExists, userName)
	}
	f.Users[userName] = &FakeUser{
		Tags:           tags,
		InlinePolicies: map[string]string{},
		Attached:       map[string]bool{},
		AccessKeys:     map[string]string{},
	}
	return nil
}

func (f *Fake) DeleteUser(ctx context.Context, userName string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("DeleteUser"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Users[userName]; !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userName)
	}
	delete(f.Users, userName)
	return nil
}

func (f *Fake) GetUserPolicy(ctx context.Context, userName, policyName string) (string, error) {
	if err := f.identityCheck(); err != nil {
		return "", err
	}
	if err := f.record("GetUserPolicy"); err != nil {
		return "", err
	}
	u, err := f.user(userName)
	if err != nil {
		return "", err
	}
	return u.InlinePolicies[policyName], nil
}

func (f *Fake) PutUserPolicy(ctx context.Context, userName, policyName, policyJSON string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("PutUserPolicy"); err != nil {
		return err
	}
	u, err := f.user(userName)
	if err != nil {
		return err
	}
	u.InlinePolicies[policyName] = policyJSON
	return nil
}

func (f *Fake) DeleteUserPolicy(ctx context.Context, userName, policyName string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("DeleteUserPolicy"); err != nil {
		return err
	}
	u, err := f.user(userName)
	if err != nil {
		return err
	}
	delete(u.InlinePolicies, policyName)
	return nil
}

func (f *Fake) AttachUserPolicy(ctx context.Context, userName, policyARN string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("AttachUserPolicy"); err != nil {
		return err
	}
	u, err := f.user(userName)
	if err != nil {
		return err
	}
	u.Attached[policyARN] = true
	return nil
}

func (f *Fake) DetachUserPolicy(ctx context.Context, userName, policyARN string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("DetachUserPolicy"); err != nil {
		return err
	}
	u, err := f.user(userName)
	if err != nil {
		return err
	}
	delete(u.Attached, policyARN)
	return nil
}

func (f *Fake) GetManagedPolicy(ctx context.Context, policyName string) (*ManagedPolicy, error) {
	if err := f.identityCheck(); err != nil {
		return nil, err
	}
	if err := f.record("GetManagedPolicy"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[policyName]
	if !ok {
		return nil, fmt.Errorf("%w: managed policy %s", ErrNotFound, policyName)
	}
	return &ManagedPolicy{ARN: p.arn, Document: p.document}, nil
}

func (f *Fake) CreateManagedPolicy(ctx context.Context, policyName, description, policyJSON string, tags map[string]string) (string, error) {
	if err := f.identityCheck(); err != nil {
		return "", err
	}
	if err := f.record("CreateManagedPolicy"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.policies[policyName]; ok {
		return "", fmt.Errorf("%w: managed policy %s", ErrAlreadyExists, policyName)
	}
	arn := "arn:aws:iam::000000000000:policy/" + policyName
	f.policies[policyName] = &fakeManagedPolicy{arn: arn, document: policyJSON}
	return arn, nil
}

func (f *Fake) UpdateManagedPolicy(ctx context.Context, policyARN, policyJSON string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("UpdateManagedPolicy"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.policies {
		if p.arn == policyARN {
			p.document = policyJSON
			return nil
		}
	}
	return fmt.Errorf("%w: managed policy %s", ErrNotFound, policyARN)
}

func (f *Fake) DeleteManagedPolicy(ctx context.Context, policyARN string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("DeleteManagedPolicy"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, p := range f.policies {
		if p.arn == policyARN {
			delete(f.policies, name)
			return nil
		}
	}
	return fmt.Errorf("%w: managed policy %s", ErrNotFound, policyARN)
}

func (f *Fake) CreateAccessKey(ctx context.Context, userName string) (*AccessKeyPair, error) {
	if err := f.identityCheck(); err != nil {
		return nil, err
	}
	if err := f.record("CreateAccessKey"); err != nil {
		return nil, err
	}
	u, err := f.user(userName)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyCounter++
	pair := &AccessKeyPair{
		AccessKeyID:     fmt.Sprintf("AKIAFAKE%012d", f.keyCounter),
		SecretAccessKey: fmt.Sprintf("secret-%d", f.keyCounter),
	}
	u.AccessKeys[pair.AccessKeyID] = pair.SecretAccessKey
	return pair, nil
}

func (f *Fake) DeleteAccessKey(ctx context.Context, userName, accessKeyID string) error {
	if err := f.identityCheck(); err != nil {
		return err
	}
	if err := f.record("DeleteAccessKey"); err != nil {
		return err
	}
	u, err := f.user(userName)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := u.AccessKeys[accessKeyID]; !ok {
		return fmt.Errorf("%w: access key %s", ErrNotFound, accessKeyID)
	}
	delete(u.AccessKeys, accessKeyID)
	return nil
}

func (f *Fake) ListAccessKeys(ctx context.Context, userName string) ([]string, error) {
	if err := f.identityCheck(); err != nil {
		return nil, err
	}
	if err := f.record("ListAccessKeys"); err != nil {
		return nil, err
	}
	u, err := f.user(userName)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(u.AccessKeys))
	for id := range u.AccessKeys {
		ids = append(ids, id)
	}
	return ids, nil
}
