package s3client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/s3"
	"golang.org/x/time/rate"
)

// Options carries everything needed to talk to one provider.
type Options struct {
	Endpoint     string
	IAMEndpoint  string
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string
	PathStyle    bool
	// TLS
	InsecureSkipVerify bool
	CACertPEM          []byte
	// retries handled by the SDK inside a single reconcile attempt
	MaxRetries int
	// shared token bucket over every remote call
	Limiter *rate.Limiter
}

type awsClient struct {
	s3  *s3.S3
	iam *iam.IAM
}

var _ Client = &awsClient{}

// New builds a provider client. The identity surface stays nil when no IAM
// endpoint is configured; identity calls then fail with ErrIAMUnsupported.
func New(opts Options) (Client, error) {
	httpClient, err := httpClientFor(opts)
	if err != nil {
		return nil, err
	}

	creds := credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, opts.SessionToken)
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	sess, err := session.NewSession(&aws.Config{
		Endpoint:         aws.String(opts.Endpoint),
		Region:           aws.String(opts.Region),
		Credentials:      creds,
		S3ForcePathStyle: aws.Bool(opts.PathStyle),
		HTTPClient:       httpClient,
		MaxRetries:       aws.Int(maxRetries),
	})
	if err != nil {
		return nil, fmt.Errorf("building provider session: %w", err)
	}

	if opts.Limiter != nil {
		limiter := opts.Limiter
		sess.Handlers.Send.PushFront(func(r *request.Request) {
			if werr := limiter.Wait(r.Context()); werr != nil {
				r.Error = werr
			}
		})
	}
	sess.Handlers.Complete.PushBack(captureRetryAfter)

	c := &awsClient{s3: s3.New(sess)}
	if opts.IAMEndpoint != "" {
		c.iam = iam.New(sess, &aws.Config{Endpoint: aws.String(opts.IAMEndpoint)})
	}
	return c, nil
}

func httpClientFor(opts Options) (*http.Client, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify} //nolint:gosec
	if len(opts.CACertPEM) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(opts.CACertPEM) {
			return nil, fmt.Errorf("%w: caCert secret holds no PEM certificates", ErrInvalidArgument)
		}
		tlsCfg.RootCAs = pool
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: &http.Transport{TLSClientConfig: tlsCfg},
	}, nil
}

// captureRetryAfter keeps the Retry-After header of a failed response in
// the error chain so Classify can surface it as a throttle hint.
func captureRetryAfter(r *request.Request) {
	if r.Error == nil || r.HTTPResponse == nil {
		return
	}
	hint := parseRetryAfter(r.HTTPResponse.Header.Get("Retry-After"), time.Now())
	if hint <= 0 {
		return
	}
	r.Error = &retryAfterError{retryAfter: hint, cause: r.Error}
}

func (c *awsClient) SupportsIAM() bool { return c.iam != nil }

func errorsIsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// urlDecode undoes the URL encoding IAM applies to returned policy
// documents.
func urlDecode(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}

func (c *awsClient) identity() (*iam.IAM, error) {
	if c.iam == nil {
		return nil, ErrIAMUnsupported
	}
	return c.iam, nil
}

func (c *awsClient) Probe(ctx context.Context) error {
	_, err := c.s3.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	return Classify(err)
}

func (c *awsClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.s3.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}
	cerr := Classify(err)
	if errorsIsNotFound(cerr) {
		return false, nil
	}
	return false, cerr
}

func (c *awsClient) CreateBucket(ctx context.Context, bucket, region string) error {
	in := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 must not carry a location constraint
	if region != "" && region != "us-east-1" {
		in.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(region),
		}
	}
	_, err := c.s3.CreateBucketWithContext(ctx, in)
	return Classify(err)
}

func (c *awsClient) DeleteBucket(ctx context.Context, bucket string) error {
	_, err := c.s3.DeleteBucketWithContext(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	return Classify(err)
}

func (c *awsClient) EmptyBucket(ctx context.Context, bucket string) error {
	// versioned and unversioned objects both show up in the versions
	// listing, so one loop covers both bucket flavors
	in := &s3.ListObjectVersionsInput{Bucket: aws.String(bucket)}
	for {
		page, err := c.s3.ListObjectVersionsWithContext(ctx, in)
		if err != nil {
			return Classify(err)
		}

		var objects []*s3.ObjectIdentifier
		for _, v := range page.Versions {
			objects = append(objects, &s3.ObjectIdentifier{Key: v.Key, VersionId: v.VersionId})
		}
		for _, m := range page.DeleteMarkers {
			objects = append(objects, &s3.ObjectIdentifier{Key: m.Key, VersionId: m.VersionId})
		}
		if len(objects) > 0 {
			_, err = c.s3.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(bucket),
				Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return Classify(err)
			}
		}

		if page.IsTruncated == nil || !*page.IsTruncated {
			return nil
		}
		in.KeyMarker = page.NextKeyMarker
		in.VersionIdMarker = page.NextVersionIdMarker
	}
}

func (c *awsClient) GetBucketVersioning(ctx context.Context, bucket string) (bool, error) {
	out, err := c.s3.GetBucketVersioningWithContext(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(bucket)})
	if err != nil {
		return false, Classify(err)
	}
	return out.Status != nil && *out.Status == s3.BucketVersioningStatusEnabled, nil
}

func (c *awsClient) PutBucketVersioning(ctx context.Context, bucket string, enabled bool) error {
	status := s3.BucketVersioningStatusSuspended
	if enabled {
		status = s3.BucketVersioningStatusEnabled
	}
	_, err := c.s3.PutBucketVersioningWithContext(ctx, &s3.PutBucketVersioningInput{
		Bucket:                  aws.String(bucket),
		VersioningConfiguration: &s3.VersioningConfiguration{Status: aws.String(status)},
	})
	return Classify(err)
}

func (c *awsClient) GetBucketEncryption(ctx context.Context, bucket string) (*EncryptionState, error) {
	out, err := c.s3.GetBucketEncryptionWithContext(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(bucket)})
	if err != nil {
		cerr := Classify(err)
		if errorsIsNotFound(cerr) {
			return nil, nil
		}
		return nil, cerr
	}
	if out.ServerSideEncryptionConfiguration == nil || len(out.ServerSideEncryptionConfiguration.Rules) == 0 {
		return nil, nil
	}
	rule := out.ServerSideEncryptionConfiguration.Rules[0]
	if rule.ApplyServerSideEncryptionByDefault == nil {
		return nil, nil
	}
	state := &EncryptionState{
		Algorithm: aws.StringValue(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm),
		KMSKeyID:  aws.StringValue(rule.ApplyServerSideEncryptionByDefault.KMSMasterKeyID),
	}
	return state, nil
}

func (c *awsClient) PutBucketEncryption(ctx context.Context, bucket string, enc EncryptionState) error {
	byDefault := &s3.ServerSideEncryptionByDefault{SSEAlgorithm: aws.String(enc.Algorithm)}
	if enc.KMSKeyID != "" {
		byDefault.KMSMasterKeyID = aws.String(enc.KMSKeyID)
	}
	_, err := c.s3.PutBucketEncryptionWithContext(ctx, &s3.PutBucketEncryptionInput{
		Bucket: aws.String(bucket),
		ServerSideEncryptionConfiguration: &s3.ServerSideEncryptionConfiguration{
			Rules: []*s3.ServerSideEncryptionRule{
				{ApplyServerSideEncryptionByDefault: byDefault},
			},
		},
	})
	return Classify(err)
}

func (c *awsClient) DeleteBucketEncryption(ctx context.Context, bucket string) error {
	_, err := c.s3.DeleteBucketEncryptionWithContext(ctx, &s3.DeleteBucketEncryptionInput{Bucket: aws.String(bucket)})
	return Classify(err)
}

func (c *awsClient) GetPublicAccessBlock(ctx context.Context, bucket string) (*PublicAccessBlockState, error) {
	out, err := c.s3.GetPublicAccessBlockWithContext(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(bucket)})
	if err != nil {
		cerr := Classify(err)
		if errorsIsNotFound(cerr) {
			return nil, nil
		}
		return nil, cerr
	}
	cfg := out.PublicAccessBlockConfiguration
	if cfg == nil {
		return nil, nil
	}
	return &PublicAccessBlockState{
		BlockPublicACLs:       aws.BoolValue(cfg.BlockPublicAcls),
		IgnorePublicACLs:      aws.BoolValue(cfg.IgnorePublicAcls),
		BlockPublicPolicy:     aws.BoolValue(cfg.BlockPublicPolicy),
		RestrictPublicBuckets: aws.BoolValue(cfg.RestrictPublicBuckets),
	}, nil
}

func (c *awsClient) PutPublicAccessBlock(ctx context.Context, bucket string, pab PublicAccessBlockState) error {
	_, err := c.s3.PutPublicAccessBlockWithContext(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &s3.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(pab.BlockPublicACLs),
			IgnorePublicAcls:      aws.Bool(pab.IgnorePublicACLs),
			BlockPublicPolicy:     aws.Bool(pab.BlockPublicPolicy),
			RestrictPublicBuckets: aws.Bool(pab.RestrictPublicBuckets),
		},
	})
	return Classify(err)
}

func (c *awsClient) GetBucketTags(ctx context.Context, bucket string) (map[string]string, error) {
	out, err := c.s3.GetBucketTaggingWithContext(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(bucket)})
	if err != nil {
		cerr := Classify(err)
		if errorsIsNotFound(cerr) {
			return nil, nil
		}
		return nil, cerr
	}
	tags := make(map[string]string, len(out.TagSet))
	for _, t := range out.TagSet {
		tags[aws.StringValue(t.Key)] = aws.StringValue(t.Value)
	}
	return tags, nil
}

func (c *awsClient) PutBucketTags(ctx context.Context, bucket string, tags map[string]string) error {
	tagSet := make([]*s3.Tag, 0, len(tags))
	for k, v := range tags {
		tagSet = append(tagSet, &s3.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	_, err := c.s3.PutBucketTaggingWithContext(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(bucket),
		Tagging: &s3.Tagging{TagSet: tagSet},
	})
	return Classify(err)
}

func (c *awsClient) DeleteBucketTags(ctx context.Context, bucket string) error {
	_, err := c.s3.DeleteBucketTaggingWithContext(ctx, &s3.DeleteBucketTaggingInput{Bucket: aws.String(bucket)})
	return Classify(err)
}

func (c *awsClient) GetBucketLifecycle(ctx context.Context, bucket string) ([]LifecycleRuleState, error) {
	out, err := c.s3.GetBucketLifecycleConfigurationWithContext(ctx, &s3.GetBucketLifecycleConfigurationInput{Bucket: aws.String(bucket)})
	if err != nil {
		cerr := Classify(err)
		if errorsIsNotFound(cerr) {
			return nil, nil
		}
		return nil, cerr
	}
	rules := make([]LifecycleRuleState, 0, len(out.Rules))
	for _, r := range out.Rules {
		state := LifecycleRuleState{
			ID:     aws.StringValue(r.ID),
			Status: aws.StringValue(r.Status),
		}
		if r.Filter != nil {
			state.Prefix = aws.StringValue(r.Filter.Prefix)
		} else {
			state.Prefix = aws.StringValue(r.Prefix)
		}
		if r.Expiration != nil {
			state.ExpirationDays = aws.Int64Value(r.Expiration.Days)
			if r.Expiration.Date != nil {
				state.ExpirationDate = r.Expiration.Date.UTC().Format("2006-01-02")
			}
		}
		for _, t := range r.Transitions {
			state.Transitions = append(state.Transitions, LifecycleTransitionState{
				Days:         aws.Int64Value(t.Days),
				StorageClass: aws.StringValue(t.StorageClass),
			})
		}
		rules = append(rules, state)
	}
	return rules, nil
}

func (c *awsClient) PutBucketLifecycle(ctx context.Context, bucket string, rules []LifecycleRuleState) error {
	out := make([]*s3.LifecycleRule, 0, len(rules))
	for _, r := range rules {
		rule := &s3.LifecycleRule{
			ID:     aws.String(r.ID),
			Status: aws.String(r.Status),
			Filter: &s3.LifecycleRuleFilter{Prefix: aws.String(r.Prefix)},
		}
		if r.ExpirationDays > 0 || r.ExpirationDate != "" {
			exp := &s3.LifecycleExpiration{}
			if r.ExpirationDays > 0 {
				exp.Days = aws.Int64(r.ExpirationDays)
			}
			if r.ExpirationDate != "" {
				d, err := time.Parse("2006-01-02", r.ExpirationDate)
				if err != nil {
					return fmt.Errorf("%w: lifecycle rule %s: bad expiration date %q", ErrInvalidArgument, r.ID, r.ExpirationDate)
				}
				exp.Date = aws.Time(d)
			}
			rule.Expiration = exp
		}
		for _, t := range r.Transitions {
			rule.Transitions = append(rule.Transitions, &s3.Transition{
				Days:         aws.Int64(t.Days),
				StorageClass: aws.String(t.StorageClass),
			})
		}
		out = append(out, rule)
	}
	_, err := c.s3.PutBucketLifecycleConfigurationWithContext(ctx, &s3.PutBucketLifecycleConfigurationInput{
		Bucket:                 aws.String(bucket),
		LifecycleConfiguration: &s3.BucketLifecycleConfiguration{Rules: out},
	})
	return Classify(err)
}

func (c *awsClient) DeleteBucketLifecycle(ctx context.Context, bucket string) error {
	_, err := c.s3.DeleteBucketLifecycleWithContext(ctx, &s3.DeleteBucketLifecycleInput{Bucket: aws.String(bucket)})
	return Classify(err)
}

func (c *awsClient) GetBucketCORS(ctx context.Context, bucket string) ([]CORSRuleState, error) {
	out, err := c.s3.GetBucketCorsWithContext(ctx, &s3.GetBucketCorsInput{Bucket: aws.String(bucket)})
	if err != nil {
		cerr := Classify(err)
		if errorsIsNotFound(cerr) {
			return nil, nil
		}
		return nil, cerr
	}
	rules := make([]CORSRuleState, 0, len(out.CORSRules))
	for _, r := range out.CORSRules {
		rules = append(rules, CORSRuleState{
			AllowedOrigins: aws.StringValueSlice(r.AllowedOrigins),
			AllowedMethods: aws.StringValueSlice(r.AllowedMethods),
			AllowedHeaders: aws.StringValueSlice(r.AllowedHeaders),
			ExposedHeaders: aws.StringValueSlice(r.ExposeHeaders),
			MaxAgeSeconds:  aws.Int64Value(r.MaxAgeSeconds),
		})
	}
	return rules, nil
}

func (c *awsClient) PutBucketCORS(ctx context.Context, bucket string, rules []CORSRuleState) error {
	out := make([]*s3.CORSRule, 0, len(rules))
	for _, r := range rules {
		rule := &s3.CORSRule{
			AllowedOrigins: aws.StringSlice(r.AllowedOrigins),
			AllowedMethods: aws.StringSlice(r.AllowedMethods),
		}
		if len(r.AllowedHeaders) > 0 {
			rule.AllowedHeaders = aws.StringSlice(r.AllowedHeaders)
		}
		if len(r.ExposedHeaders) > 0 {
			rule.ExposeHeaders = aws.StringSlice(r.ExposedHeaders)
		}
		if r.MaxAgeSeconds > 0 {
			rule.MaxAgeSeconds = aws.Int64(r.MaxAgeSeconds)
		}
		out = append(out, rule)
	}
	_, err := c.s3.PutBucketCorsWithContext(ctx, &s3.PutBucketCorsInput{
		Bucket:            aws.String(bucket),
		CORSConfiguration: &s3.CORSConfiguration{CORSRules: out},
	})
	return Classify(err)
}

func (c *awsClient) DeleteBucketCORS(ctx context.Context, bucket string) error {
	_, err := c.s3.DeleteBucketCorsWithContext(ctx, &s3.DeleteBucketCorsInput{Bucket: aws.String(bucket)})
	return Classify(err)
}

func (c *awsClient) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	out, err := c.s3.GetBucketPolicyWithContext(ctx, &s3.GetBucketPolicyInput{Bucket: aws.String(bucket)})
	if err != nil {
		cerr := Classify(err)
		if errorsIsNotFound(cerr) {
			return "", nil
		}
		return "", cerr
	}
	return aws.StringValue(out.Policy), nil
}

func (c *awsClient) PutBucketPolicy(ctx context.Context, bucket, policyJSON string) error {
	_, err := c.s3.PutBucketPolicyWithContext(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(policyJSON),
	})
	return Classify(err)
}

func (c *awsClient) DeleteBucketPolicy(ctx context.Context, bucket string) error {
	_, err := c.s3.DeleteBucketPolicyWithContext(ctx, &s3.DeleteBucketPolicyInput{Bucket: aws.String(bucket)})
	return Classify(err)
}

func (c *awsClient) UserExists(ctx context.Context, userName string) (bool, error) {
	svc, err := c.identity()
	if err != nil {
		return false, err
	}
	_, err = svc.GetUserWithContext(ctx, &iam.GetUserInput{UserName: aws.String(userName)})
	if err == nil {
		return true, nil
	}
	cerr := Classify(err)
	if errorsIsNotFound(cerr) {
		return false, nil
	}
	return false, cerr
}

func (c *awsClient) CreateUser(ctx context.Context, userName string, tags map[string]string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}
	in := &iam.CreateUserInput{UserName: aws.String(userName)}
	for k, v := range tags {
		in.Tags = append(in.Tags, &iam.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	_, err = svc.CreateUserWithContext(ctx, in)
	return Classify(err)
}

func (c *awsClient) DeleteUser(ctx context.Context, userName string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}
	_, err = svc.DeleteUserWithContext(ctx, &iam.DeleteUserInput{UserName: aws.String(userName)})
	return Classify(err)
}

func (c *awsClient) GetUserPolicy(ctx context.Context, userName, policyName string) (string, error) {
	svc, err := c.identity()
	if err != nil {
		return "", err
	}
	out, err := svc.GetUserPolicyWithContext(ctx, &iam.GetUserPolicyInput{
		UserName:   aws.String(userName),
		PolicyName: aws.String(policyName),
	})
	if err != nil {
		cerr := Classify(err)
		if errorsIsNotFound(cerr) {
			return "", nil
		}
		return "", cerr
	}
	// inline policy documents come back URL-encoded
	return urlDecode(aws.StringValue(out.PolicyDocument)), nil
}

func (c *awsClient) PutUserPolicy(ctx context.Context, userName, policyName, policyJSON string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}
	_, err = svc.PutUserPolicyWithContext(ctx, &iam.PutUserPolicyInput{
		UserName:       aws.String(userName),
		PolicyName:     aws.String(policyName),
		PolicyDocument: aws.String(policyJSON),
	})
	return Classify(err)
}

func (c *awsClient) DeleteUserPolicy(ctx context.Context, userName, policyName string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}
	_, err = svc.DeleteUserPolicyWithContext(ctx, &iam.DeleteUserPolicyInput{
		UserName:   aws.String(userName),
		PolicyName: aws.String(policyName),
	})
	return Classify(err)
}

func (c *awsClient) AttachUserPolicy(ctx context.Context, userName, policyARN string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}
	_, err = svc.AttachUserPolicyWithContext(ctx, &iam.AttachUserPolicyInput{
		UserName:  aws.String(userName),
		PolicyArn: aws.String(policyARN),
	})
	return Classify(err)
}

func (c *awsClient) DetachUserPolicy(ctx context.Context, userName, policyARN string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}
	_, err = svc.DetachUserPolicyWithContext(ctx, &iam.DetachUserPolicyInput{
		UserName:  aws.String(userName),
		PolicyArn: aws.String(policyARN),
	})
	return Classify(err)
}

func (c *awsClient) GetManagedPolicy(ctx context.Context, policyName string) (*ManagedPolicy, error) {
	svc, err := c.identity()
	if err != nil {
		return nil, err
	}

	var found *iam.Policy
	in := &iam.ListPoliciesInput{Scope: aws.String(iam.PolicyScopeTypeLocal)}
	for {
		page, err := svc.ListPoliciesWithContext(ctx, in)
		if err != nil {
			return nil, Classify(err)
		}
		for _, p := range page.Policies {
			if aws.StringValue(p.PolicyName) == policyName {
				found = p
				break
			}
		}
		if found != nil || page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		in.Marker = page.Marker
	}
	if found == nil {
		return nil, fmt.Errorf("%w: managed policy %s", ErrNotFound, policyName)
	}

	ver, err := svc.GetPolicyVersionWithContext(ctx, &iam.GetPolicyVersionInput{
		PolicyArn: found.Arn,
		VersionId: found.DefaultVersionId,
	})
	if err != nil {
		return nil, Classify(err)
	}
	return &ManagedPolicy{
		ARN:      aws.StringValue(found.Arn),
		Document: urlDecode(aws.StringValue(ver.PolicyVersion.Document)),
	}, nil
}

func (c *awsClient) CreateManagedPolicy(ctx context.Context, policyName, description, policyJSON string, tags map[string]string) (string, error) {
	svc, err := c.identity()
	if err != nil {
		return "", err
	}
	in := &iam.CreatePolicyInput{
		PolicyName:     aws.String(policyName),
		PolicyDocument: aws.String(policyJSON),
	}
	if description != "" {
		in.Description = aws.String(description)
	}
	for k, v := range tags {
		in.Tags = append(in.Tags, &iam.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	out, err := svc.CreatePolicyWithContext(ctx, in)
	if err != nil {
		return "", Classify(err)
	}
	return aws.StringValue(out.Policy.Arn), nil
}

func (c *awsClient) UpdateManagedPolicy(ctx context.Context, policyARN, policyJSON string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}

	// IAM caps stored versions at five; drop the oldest non-default ones
	versions, err := svc.ListPolicyVersionsWithContext(ctx, &iam.ListPolicyVersionsInput{PolicyArn: aws.String(policyARN)})
	if err != nil {
		return Classify(err)
	}
	if len(versions.Versions) >= 5 {
		for _, v := range versions.Versions {
			if v.IsDefaultVersion != nil && *v.IsDefaultVersion {
				continue
			}
			_, err = svc.DeletePolicyVersionWithContext(ctx, &iam.DeletePolicyVersionInput{
				PolicyArn: aws.String(policyARN),
				VersionId: v.VersionId,
			})
			if err != nil {
				return Classify(err)
			}
			break
		}
	}

	_, err = svc.CreatePolicyVersionWithContext(ctx, &iam.CreatePolicyVersionInput{
		PolicyArn:      aws.String(policyARN),
		PolicyDocument: aws.String(policyJSON),
		SetAsDefault:   aws.Bool(true),
	})
	return Classify(err)
}

func (c *awsClient) DeleteManagedPolicy(ctx context.Context, policyARN string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}

	versions, err := svc.ListPolicyVersionsWithContext(ctx, &iam.ListPolicyVersionsInput{PolicyArn: aws.String(policyARN)})
	if err != nil {
		return Classify(err)
	}
	for _, v := range versions.Versions {
		if v.IsDefaultVersion != nil && *v.IsDefaultVersion {
			continue
		}
		_, err = svc.DeletePolicyVersionWithContext(ctx, &iam.DeletePolicyVersionInput{
			PolicyArn: aws.String(policyARN),
			VersionId: v.VersionId,
		})
		if err != nil {
			return Classify(err)
		}
	}

	_, err = svc.DeletePolicyWithContext(ctx, &iam.DeletePolicyInput{PolicyArn: aws.String(policyARN)})
	return Classify(err)
}

func (c *awsClient) CreateAccessKey(ctx context.Context, userName string) (*AccessKeyPair, error) {
	svc, err := c.identity()
	if err != nil {
		return nil, err
	}
	out, err := svc.CreateAccessKeyWithContext(ctx, &iam.CreateAccessKeyInput{UserName: aws.String(userName)})
	if err != nil {
		return nil, Classify(err)
	}
	return &AccessKeyPair{
		AccessKeyID:     aws.StringValue(out.AccessKey.AccessKeyId),
		SecretAccessKey: aws.StringValue(out.AccessKey.SecretAccessKey),
	}, nil
}

func (c *awsClient) DeleteAccessKey(ctx context.Context, userName, accessKeyID string) error {
	svc, err := c.identity()
	if err != nil {
		return err
	}
	_, err = svc.DeleteAccessKeyWithContext(ctx, &iam.DeleteAccessKeyInput{
		UserName:    aws.String(userName),
		AccessKeyId: aws.String(accessKeyID),
	})
	return Classify(err)
}

func (c *awsClient) ListAccessKeys(ctx context.Context, userName string) ([]string, error) {
	svc, err := c.identity()
	if err != nil {
		return nil, err
	}
	out, err := svc.ListAccessKeysWithContext(ctx, &iam.ListAccessKeysInput{UserName: aws.String(userName)})
	if err != nil {
		return nil, Classify(err)
	}
	ids := make([]string, 0, len(out.AccessKeyMetadata))
	for _, md := range out.AccessKeyMetadata {
		ids = append(ids, aws.StringValue(md.AccessKeyId))
	}
	return ids, nil
}
