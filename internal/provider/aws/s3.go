package aws

import (
	"fmt"
	"regexp"

	"github.com/json-to-terraform/stacks/internal/construct"
)

var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// S3BucketConfig configures aws_s3_bucket. Bucket and BucketPrefix are exclusive.
type S3BucketConfig struct {
	Bucket       string
	BucketPrefix string
	ForceDestroy bool
	Tags         map[string]string
}

// S3Bucket is an aws_s3_bucket.
type S3Bucket struct{ *construct.Resource }

// Bucket references the bucket name.
func (b *S3Bucket) Bucket() string { return b.Get("bucket") }

// ARN references the bucket ARN.
func (b *S3Bucket) ARN() string { return b.Get("arn") }

// NewS3Bucket declares a bucket.
func NewS3Bucket(s *construct.Stack, id string, cfg *S3BucketConfig) *S3Bucket {
	if cfg.Bucket != "" && cfg.BucketPrefix != "" {
		s.Report(id, "bucket and bucket_prefix are mutually exclusive", "Set only one of Bucket and BucketPrefix")
	}
	if cfg.Bucket != "" && !construct.IsToken(cfg.Bucket) && !bucketNamePattern.MatchString(cfg.Bucket) {
		s.Report(id, fmt.Sprintf("bucket %q is not a valid bucket name", cfg.Bucket),
			"Use 3-63 lowercase letters, digits, dots and hyphens")
	}
	if len(cfg.BucketPrefix) > 37 {
		s.Report(id, "bucket_prefix is longer than 37 characters", "Shorten the prefix")
	}

	body := construct.NewBody()
	body.SetString("bucket", cfg.Bucket)
	body.SetString("bucket_prefix", cfg.BucketPrefix)
	body.SetBool("force_destroy", cfg.ForceDestroy)
	setTags(body, cfg.Tags)
	return &S3Bucket{s.AddResource(id, "aws_s3_bucket", body)}
}

// S3ObjectConfig configures aws_s3_object.
type S3ObjectConfig struct {
	Bucket      string
	Key         string
	Source      string
	ContentType string
}

// S3Object is an aws_s3_object.
type S3Object struct{ *construct.Resource }

// Key references the object key.
func (o *S3Object) Key() string { return o.Get("key") }

// NewS3Object uploads a local file (usually a staged asset) into a bucket.
func NewS3Object(s *construct.Stack, id string, cfg *S3ObjectConfig) *S3Object {
	c := checker{s, id}
	c.required("bucket", cfg.Bucket, "Reference the bucket, e.g. bucket.Bucket()")
	c.required("key", cfg.Key, "Set the object key")
	c.required("source", cfg.Source, "Point Source at a staged asset, e.g. asset.Path()")

	body := construct.NewBody()
	body.SetString("bucket", cfg.Bucket)
	body.SetString("key", cfg.Key)
	body.SetString("source", cfg.Source)
	body.SetString("content_type", cfg.ContentType)
	return &S3Object{s.AddResource(id, "aws_s3_object", body)}
}
