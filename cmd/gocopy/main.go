// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/navwar/gocopy/pkg/copier"
	"github.com/navwar/gocopy/pkg/fs"
	"github.com/navwar/gocopy/pkg/lfs"
	"github.com/navwar/gocopy/pkg/log"
	"github.com/navwar/gocopy/pkg/s3fs"
	"github.com/navwar/gocopy/pkg/state"
	"github.com/navwar/gocopy/pkg/ts"
)

const (
	GoCopyVersion = "0.0.1"
)

// AWS Flags
const (
	// Profile
	flagAWSProfile       = "aws-profile"
	flagAWSDefaultRegion = "aws-default-region"
	flagAWSRegion        = "aws-region"
	// Credentials
	flagAWSAccessKeyID     = "aws-access-key-id"
	flagAWSSecretAccessKey = "aws-secret-access-key"
	flagAWSSessionToken    = "aws-session-token"
	// Client
	flagAWSRetryMaxAttempts = "aws-retry-max-attempts"
	// TLS
	flagAWSInsecureSkipVerify = "aws-insecure-skip-verify"
	// Miscellaneous
	flagAWSS3Endpoint     = "aws-s3-endpoint"
	flagAWSS3UsePathStyle = "aws-s3-use-path-style"
	flagBucketKeyEnabled  = "aws-bucket-key-enabled"
	flagPartSize          = "aws-part-size"
)

// AWS Source and Destination Flags
const (
	// AWS Source Flags
	flagSourceAWSProfile         = "source-aws-profile"
	flagSourceAWSRegion          = "source-aws-region"
	flagSourceAWSS3Endpoint      = "source-aws-s3-endpoint"
	flagSourceAWSS3UsePathStyle  = "source-aws-s3-use-path-style"
	flagSourceAWSAccessKeyID     = "source-aws-access-key-id"
	flagSourceAWSSecretAccessKey = "source-aws-secret-access-key"
	flagSourceAWSSessionToken    = "source-aws-session-token"
	// AWS Destination Flags
	flagDestinationAWSProfile         = "destination-aws-profile"
	flagDestinationAWSRegion          = "destination-aws-region"
	flagDestinationAWSS3Endpoint      = "destination-aws-s3-endpoint"
	flagDestinationAWSS3UsePathStyle  = "destination-aws-s3-use-path-style"
	flagDestinationAWSAccessKeyID     = "destination-aws-access-key-id"
	flagDestinationAWSSecretAccessKey = "destination-aws-secret-access-key"
	flagDestinationAWSSessionToken    = "destination-aws-session-token"
)

// Copy Flags
const (
	flagRecursive           = "recursive"
	flagOverwrite           = "overwrite"
	flagOverwriteMismatches = "overwrite-mismatches"
	flagIgnoreErrors        = "ignore-errors"
	flagParallelJobs        = "parallel-jobs"
	//
	flagState          = "state"
	flagStateFrequency = "state-frequency"
	//
	flagTimestampPrecision = "timestamp-precision"
	flagFilesPerSecond     = "files-per-second"
	flagVerbose            = "verbose"
	flagJSON               = "json"
)

// Copy Defaults
const (
	DefaultParallelJobs = 1
	DefaultPartSize     = s3fs.DefaultPartSize
	MinimumPartSize     = s3fs.MinimumPartSize
)

// Log Flags
const (
	flagLogPath            = "log-path"
	flagLogFormat          = "log-format"
	flagLogPerm            = "log-perm"
	flagTimeLayout         = "time-layout"
	flagTimeZone           = "time-zone"
	flagLogClientSigning   = "log-client-signing"
	flagLogClientRequests  = "log-client-requests"
	flagLogClientResponses = "log-client-responses"
	flagLogClientRetries   = "log-client-retries"
)

// Log Defaults
const (
	LogFormatJSONL   = "jsonl"
	LogFormatText    = "text"
	DefaultLogFormat = LogFormatJSONL
)

const (
	schemeFile = "file://"
	schemeS3   = "s3://"
)

// initAWSFlags initializes the AWS flags.
func initAWSFlags(flag *pflag.FlagSet) {
	// Profile
	flag.String(flagAWSProfile, "default", "AWS Profile")
	flag.String(flagAWSDefaultRegion, "", "AWS Default Region")
	flag.String(flagAWSRegion, "", "AWS Region (overrides default region)")
	// Credentials
	flag.String(flagAWSAccessKeyID, "", "AWS Access Key ID")
	flag.String(flagAWSSecretAccessKey, "", "AWS Secret Access Key")
	flag.String(flagAWSSessionToken, "", "AWS Session Token")
	// Client
	flag.Int(flagAWSRetryMaxAttempts, 5, "the maximum number attempts an AWS API client will call an operation that fails with a retryable error.")
	// TLS
	flag.Bool(flagAWSInsecureSkipVerify, false, "Skip verification of AWS TLS certificate")
	// Misceallenous
	flag.String(flagAWSS3Endpoint, "", "AWS S3 Endpoint URL")
	flag.Bool(flagAWSS3UsePathStyle, false, "Use path-style addressing (default is to use virtual-host-style addressing)")
	flag.Bool(flagBucketKeyEnabled, false, "bucket key enabled")
	flag.Int(flagPartSize, DefaultPartSize, fmt.Sprintf("size of parts in bytes when uploading to S3 (minimum %d)", MinimumPartSize))
	// AWS Source Flags
	flag.String(flagSourceAWSProfile, "", "AWS Profile for source")
	flag.String(flagSourceAWSRegion, "", "AWS Region for source")
	flag.String(flagSourceAWSS3Endpoint, "", "AWS S3 Endpoint URL for source")
	flag.Bool(flagSourceAWSS3UsePathStyle, false, "Use path-style addressing (default is to use virtual-host-style addressing) for source")
	flag.String(flagSourceAWSAccessKeyID, "", "AWS Access Key ID for source")
	flag.String(flagSourceAWSSecretAccessKey, "", "AWS Secret Access Key for source")
	flag.String(flagSourceAWSSessionToken, "", "AWS Session Token for source")
	// AWS Destination Flags
	flag.String(flagDestinationAWSProfile, "", "AWS Profile for destination")
	flag.String(flagDestinationAWSRegion, "", "AWS Region for destination")
	flag.String(flagDestinationAWSS3Endpoint, "", "AWS S3 Endpoint URL for destination")
	flag.Bool(flagDestinationAWSS3UsePathStyle, false, "Use path-style addressing (default is to use virtual-host-style addressing) for destination")
	flag.String(flagDestinationAWSAccessKeyID, "", "AWS Access Key ID for destination")
	flag.String(flagDestinationAWSSecretAccessKey, "", "AWS Secret Access Key for destination")
	flag.String(flagDestinationAWSSessionToken, "", "AWS Session Token for destination")
}

func initCopyFlags(flag *pflag.FlagSet) {
	flag.BoolP(flagRecursive, "r", false, "copy directories recursively")
	flag.BoolP(flagOverwrite, "o", false, "overwrite existing files")
	flag.Bool(flagOverwriteMismatches, false, "overwrite existing files if the size differs or the source was modified more recently")
	flag.BoolP(flagIgnoreErrors, "e", false, "log errors and continue copying")
	flag.IntP(flagParallelJobs, "j", DefaultParallelJobs, "maximum number of concurrent file copies.  Use -1 for the number of CPUs.")
	flag.StringP(flagState, "s", "", "path to the state file used to resume an interrupted copy")
	flag.Int(flagStateFrequency, copier.DefaultStateFrequency, "save the state file every n files")
	flag.Duration(flagTimestampPrecision, copier.DefaultTimestampPrecision, "precision to use when comparing timestamps")
	flag.Float64(flagFilesPerSecond, 0, "maximum number of files started per second.  Zero is unlimited.")
	flag.BoolP(flagVerbose, "v", false, "log an event for every file")
	flag.String(flagJSON, "", "print the final state as JSON.  Either true or pretty.")
	flag.Lookup(flagJSON).NoOptDefVal = "true"
}

func initLogFlags(flag *pflag.FlagSet) {
	flag.String(flagLogPath, "-", "path to the log output.  Defaults to the operating system's stdout device.")
	flag.String(flagLogFormat, DefaultLogFormat, "log format.  Either jsonl or text.")
	flag.String(flagLogPerm, "0600", "file permissions for log output file as unix file mode.")
	flag.StringP(flagTimeLayout, "t", ts.DefaultLayoutName, "the layout to use for log timestamps.  Use go layout format, or the name of a layout.  Use gocopy layouts to show all named layouts.")
	flag.StringP(flagTimeZone, "z", "UTC", "the timezone to use for log timestamps")
	flag.Bool(flagLogClientSigning, false, "log AWS client signature requests")
	flag.Bool(flagLogClientRequests, false, "log AWS client requests")
	flag.Bool(flagLogClientResponses, false, "log AWS client responses")
	flag.Bool(flagLogClientRetries, false, "log AWS client retries")
}

func initCopyCommandFlags(flag *pflag.FlagSet) {
	initAWSFlags(flag)
	initCopyFlags(flag)
	initLogFlags(flag)
}

func initViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return v, fmt.Errorf("error binding flag set to viper: %w", err)
	}
	v.SetEnvPrefix("GOCOPY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // set environment variables to overwrite config
	return v, nil
}

// parseBucket splits an s3 URI into the bucket and the key prefix.
func parseBucket(uri string) (string, string) {
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(uri, schemeS3), "/")
	return bucket, strings.Trim(prefix, "/")
}

// localPath returns the absolute path of a local URI.
func localPath(uri string) (string, error) {
	p, err := filepath.Abs(strings.TrimPrefix(uri, schemeFile))
	if err != nil {
		return "", fmt.Errorf("error creating absolute path for %q: %w", uri, err)
	}
	return p, nil
}

func firstString(v *viper.Viper, keys ...string) string {
	for _, key := range keys {
		if value := v.GetString(key); len(value) > 0 {
			return value
		}
	}
	return ""
}

func checkAWSConfig(v *viper.Viper, args []string) error {
	if retryMaxAttempts := v.GetInt(flagAWSRetryMaxAttempts); retryMaxAttempts < 0 {
		return fmt.Errorf("%q value %d is invalid, expecting value greater than or equal to 0", flagAWSRetryMaxAttempts, retryMaxAttempts)
	}
	if partSize := v.GetInt(flagPartSize); partSize < MinimumPartSize {
		return fmt.Errorf("part size %d is less than the minimum part size %d", partSize, MinimumPartSize)
	}
	return nil
}

func checkLogConfig(v *viper.Viper, args []string) error {
	logPath := v.GetString(flagLogPath)
	if len(logPath) == 0 {
		return fmt.Errorf("log path is missing")
	}
	logPerm := v.GetString(flagLogPerm)
	if len(logPerm) == 0 {
		return fmt.Errorf("log perm is missing")
	}
	_, err := strconv.ParseUint(logPerm, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid format for log perm: %s", logPerm)
	}
	if logFormat := v.GetString(flagLogFormat); logFormat != LogFormatJSONL && logFormat != LogFormatText {
		return fmt.Errorf("invalid log format %q, expecting %q or %q", logFormat, LogFormatJSONL, LogFormatText)
	}
	if _, err := ts.ParseLocation(v.GetString(flagTimeZone)); err != nil {
		return fmt.Errorf("invalid time zone %q: %w", v.GetString(flagTimeZone), err)
	}
	return nil
}

func checkCopyConfig(v *viper.Viper, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expecting 2 positional arguments for source and destination, but found %d arguments", len(args))
	}

	if strings.HasPrefix(args[0], schemeS3) && strings.HasPrefix(args[1], schemeS3) {
		sourceEndpoint := firstString(v, flagSourceAWSS3Endpoint, flagAWSS3Endpoint)
		destinationEndpoint := firstString(v, flagDestinationAWSS3Endpoint, flagAWSS3Endpoint)
		if sourceEndpoint == destinationEndpoint {
			sourceBucket, sourceKey := parseBucket(args[0])
			destinationBucket, destinationKey := parseBucket(args[1])
			if len(sourceBucket) == 0 || len(destinationBucket) == 0 {
				return fmt.Errorf("bucket is missing from %q or %q", args[0], args[1])
			}
			if err := s3fs.Check(sourceBucket, sourceKey, destinationBucket, destinationKey); err != nil {
				return err
			}
		}
	} else if !strings.HasPrefix(args[0], schemeS3) && !strings.HasPrefix(args[1], schemeS3) {
		sourcePath, err := localPath(args[0])
		if err != nil {
			return err
		}
		destinationPath, err := localPath(args[1])
		if err != nil {
			return err
		}
		// check for cycle errors
		if err := lfs.Check(sourcePath, destinationPath); err != nil {
			return err
		}
	}

	if err := checkAWSConfig(v, args); err != nil {
		return fmt.Errorf("error with AWS configuration: %w", err)
	}
	if err := checkLogConfig(v, args); err != nil {
		return fmt.Errorf("error with log configuration: %w", err)
	}
	if parallelJobs := v.GetInt(flagParallelJobs); parallelJobs == 0 || parallelJobs < -1 {
		return fmt.Errorf("parallel jobs %d is invalid, expecting -1 or a positive number", parallelJobs)
	}
	if stateFrequency := v.GetInt(flagStateFrequency); stateFrequency < 1 {
		return fmt.Errorf("state frequency %d is invalid, expecting a positive number", stateFrequency)
	}
	if timestampPrecision := v.GetDuration(flagTimestampPrecision); timestampPrecision <= 0 {
		return fmt.Errorf("timestamp precision %q is invalid, expecting a positive duration", timestampPrecision)
	}
	if filesPerSecond := v.GetFloat64(flagFilesPerSecond); filesPerSecond < 0 {
		return fmt.Errorf("files per second %v is invalid, expecting zero or a positive number", filesPerSecond)
	}
	if output := v.GetString(flagJSON); output != "" && output != "true" && output != "pretty" {
		return fmt.Errorf("invalid json output %q, expecting %q or %q", output, "true", "pretty")
	}
	return nil
}

type InitS3ClientInput struct {
	Profile string
	Region  string
	// AWS Client
	Endpoint           string
	InsecureSkipVerify bool
	RetryMaxAttempts   int
	UsePathStyle       bool
	// AWS Credentials
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	// Client Log Mode
	Logger             fs.Logger
	LogClientSigning   bool
	LogClientRetries   bool
	LogClientRequests  bool
	LogClientResponses bool
}

// newS3ClientInput resolves the client configuration for the source or destination,
// falling back to the shared AWS flags and then to the shared config profile.
func newS3ClientInput(ctx context.Context, v *viper.Viper, logger fs.Logger, destination bool) *InitS3ClientInput {
	side := map[string]string{
		flagAWSProfile:         flagSourceAWSProfile,
		flagAWSRegion:          flagSourceAWSRegion,
		flagAWSS3Endpoint:      flagSourceAWSS3Endpoint,
		flagAWSS3UsePathStyle:  flagSourceAWSS3UsePathStyle,
		flagAWSAccessKeyID:     flagSourceAWSAccessKeyID,
		flagAWSSecretAccessKey: flagSourceAWSSecretAccessKey,
		flagAWSSessionToken:    flagSourceAWSSessionToken,
	}
	if destination {
		side = map[string]string{
			flagAWSProfile:         flagDestinationAWSProfile,
			flagAWSRegion:          flagDestinationAWSRegion,
			flagAWSS3Endpoint:      flagDestinationAWSS3Endpoint,
			flagAWSS3UsePathStyle:  flagDestinationAWSS3UsePathStyle,
			flagAWSAccessKeyID:     flagDestinationAWSAccessKeyID,
			flagAWSSecretAccessKey: flagDestinationAWSSecretAccessKey,
			flagAWSSessionToken:    flagDestinationAWSSessionToken,
		}
	}

	profile := firstString(v, side[flagAWSProfile], flagAWSProfile)
	if len(profile) == 0 {
		profile = "default"
	}

	region := firstString(v, side[flagAWSRegion], flagAWSRegion, flagAWSDefaultRegion)
	if len(region) == 0 {
		sharedConfig, err := config.LoadSharedConfigProfile(ctx, profile)
		if err == nil {
			region = sharedConfig.Region
		}
	}

	return &InitS3ClientInput{
		Profile: profile,
		Region:  region,
		// AWS Client
		Endpoint:           firstString(v, side[flagAWSS3Endpoint], flagAWSS3Endpoint),
		InsecureSkipVerify: v.GetBool(flagAWSInsecureSkipVerify),
		RetryMaxAttempts:   v.GetInt(flagAWSRetryMaxAttempts),
		UsePathStyle:       v.GetBool(side[flagAWSS3UsePathStyle]) || v.GetBool(flagAWSS3UsePathStyle),
		// AWS Credentials
		AccessKeyID:     firstString(v, side[flagAWSAccessKeyID], flagAWSAccessKeyID),
		SecretAccessKey: firstString(v, side[flagAWSSecretAccessKey], flagAWSSecretAccessKey),
		SessionToken:    firstString(v, side[flagAWSSessionToken], flagAWSSessionToken),
		// Client Log Mode
		Logger:             logger,
		LogClientSigning:   v.GetBool(flagLogClientSigning),
		LogClientRetries:   v.GetBool(flagLogClientRetries),
		LogClientRequests:  v.GetBool(flagLogClientRequests),
		LogClientResponses: v.GetBool(flagLogClientResponses),
	}
}

// equal returns true if both inputs would create the same client.
func (input *InitS3ClientInput) equal(other *InitS3ClientInput) bool {
	return input.Profile == other.Profile &&
		input.Region == other.Region &&
		input.Endpoint == other.Endpoint &&
		input.UsePathStyle == other.UsePathStyle &&
		input.AccessKeyID == other.AccessKeyID &&
		input.SecretAccessKey == other.SecretAccessKey &&
		input.SessionToken == other.SessionToken
}

func InitS3Client(ctx context.Context, input *InitS3ClientInput) *s3.Client {
	clientLogMode := aws.ClientLogMode(0)
	if input.LogClientSigning {
		clientLogMode |= aws.LogSigning
	}
	if input.LogClientRetries {
		clientLogMode |= aws.LogRetries
	}
	if input.LogClientRequests {
		clientLogMode |= aws.LogRequest
	}
	if input.LogClientResponses {
		clientLogMode |= aws.LogResponse
	}

	c := aws.Config{
		ClientLogMode:    clientLogMode,
		RetryMaxAttempts: input.RetryMaxAttempts,
		Region:           input.Region,
		Logger:           log.NewClientLogger(input.Logger),
	}

	if len(input.AccessKeyID) > 0 && len(input.SecretAccessKey) > 0 {
		c.Credentials = credentials.NewStaticCredentialsProvider(
			input.AccessKeyID,
			input.SecretAccessKey,
			input.SessionToken)
	} else {
		sharedConfig, err := config.LoadSharedConfigProfile(ctx, input.Profile)
		if err == nil {
			c.Credentials = credentials.NewStaticCredentialsProvider(
				sharedConfig.Credentials.AccessKeyID,
				sharedConfig.Credentials.SecretAccessKey,
				sharedConfig.Credentials.SessionToken)
		}
	}

	if input.InsecureSkipVerify {
		c.HTTPClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		}
	}

	client := s3.NewFromConfig(c, func(o *s3.Options) {
		o.UsePathStyle = input.UsePathStyle
		if len(input.Endpoint) > 0 {
			o.BaseEndpoint = aws.String(input.Endpoint)
		}
	})

	return client
}

type InitFileSystemInput struct {
	URI      string
	ReadOnly bool
	// S3
	Bucket           string
	Prefix           string
	BucketKeyEnabled bool
	PartSize         int
	Client           *InitS3ClientInput
}

// InitFileSystem returns the filesystem for the URI.
// Local filesystems use absolute paths, while S3 filesystems are rooted at the bucket and prefix.
func InitFileSystem(ctx context.Context, input *InitFileSystemInput) fs.FileSystem {
	if !strings.HasPrefix(input.URI, schemeS3) {
		if input.ReadOnly {
			return lfs.NewReadOnlyLocalFileSystem("")
		}
		return lfs.NewLocalFileSystem("")
	}

	client := InitS3Client(ctx, input.Client)

	// If the region is unknown, then look up the region containing the bucket.
	if len(input.Client.Region) == 0 {
		getBucketLocationOutput, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
			Bucket: aws.String(input.Bucket),
		})
		if err == nil {
			region := "us-east-1"
			if locationConstraint := string(getBucketLocationOutput.LocationConstraint); len(locationConstraint) > 0 {
				region = locationConstraint
			}
			clientInput := *input.Client
			clientInput.Region = region
			client = InitS3Client(ctx, &clientInput)
		}
	}

	return s3fs.NewS3FileSystem(&s3fs.S3FileSystemInput{
		Client:           client,
		Bucket:           input.Bucket,
		Prefix:           input.Prefix,
		BucketKeyEnabled: input.BucketKeyEnabled,
		PartSize:         input.PartSize,
	})
}

func initLogger(path string, perm string, format string, layout ts.Layout, location *time.Location) (fs.Logger, error) {

	newLogger := func(w io.Writer) fs.Logger {
		if format == LogFormatText {
			return log.NewTextLogger(w, layout, location)
		}
		return log.NewSimpleLoggerWithLayout(w, layout, location)
	}

	if path == os.DevNull {
		return newLogger(io.Discard), nil
	}

	if path == "-" {
		return newLogger(os.Stdout), nil
	}

	fileMode := os.FileMode(0600)

	if len(perm) > 0 {
		fm, err := strconv.ParseUint(perm, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("error parsing file permissions for log file from %q", perm)
		}
		fileMode = os.FileMode(fm)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, fmt.Errorf("error opening log file %q: %w", path, err)
	}

	return newLogger(f), nil
}

func printState(w io.Writer, s *state.State, output string) error {
	if s == nil || len(output) == 0 {
		return nil
	}
	encoder := json.NewEncoder(w)
	if output == "pretty" {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("error encoding state: %w", err)
	}
	return nil
}

func copyCommandRunE(cmd *cobra.Command, args []string) error {

	v, err := initViper(cmd)
	if err != nil {
		return fmt.Errorf("error initializing viper: %w", err)
	}

	if errConfig := checkCopyConfig(v, args); errConfig != nil {
		return errConfig
	}

	// validated by checkLogConfig
	location, _ := ts.ParseLocation(v.GetString(flagTimeZone))

	logger, err := initLogger(
		v.GetString(flagLogPath),
		v.GetString(flagLogPerm),
		v.GetString(flagLogFormat),
		ts.ParseLayout(v.GetString(flagTimeLayout)),
		location)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	// save the state when interrupted
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sourceURI := args[0]
	destinationURI := args[1]

	parallelJobs := v.GetInt(flagParallelJobs)
	if parallelJobs == -1 {
		parallelJobs = runtime.NumCPU()
	}
	bucketKeyEnabled := v.GetBool(flagBucketKeyEnabled)
	partSize := v.GetInt(flagPartSize)

	sourceClientInput := newS3ClientInput(ctx, v, logger, false)
	destinationClientInput := newS3ClientInput(ctx, v, logger, true)

	_ = logger.Log("Configuration", map[string]interface{}{
		"aws_retry_max_attempts": v.GetInt(flagAWSRetryMaxAttempts),
		"bucket_key_enabled":     bucketKeyEnabled,
		"files_per_second":       v.GetFloat64(flagFilesPerSecond),
		"ignore_errors":          v.GetBool(flagIgnoreErrors),
		"overwrite":              v.GetBool(flagOverwrite),
		"overwrite_mismatches":   v.GetBool(flagOverwriteMismatches),
		"parallel_jobs":          parallelJobs,
		"part_size":              partSize,
		"recursive":              v.GetBool(flagRecursive),
		"state":                  v.GetString(flagState),
		"state_frequency":        v.GetInt(flagStateFrequency),
		"timestamp_precision":    v.GetDuration(flagTimestampPrecision).String(),
	})

	input := &copier.CopyInput{
		Recursive:           v.GetBool(flagRecursive),
		Overwrite:           v.GetBool(flagOverwrite),
		OverwriteMismatches: v.GetBool(flagOverwriteMismatches),
		IgnoreErrors:        v.GetBool(flagIgnoreErrors),
		MaxJobs:             parallelJobs,
		StatePath:           v.GetString(flagState),
		StateFrequency:      v.GetInt(flagStateFrequency),
		StateFileSystem:     afero.NewOsFs(),
		TimestampPrecision:  v.GetDuration(flagTimestampPrecision),
		FilesPerSecond:      v.GetFloat64(flagFilesPerSecond),
		Logger:              logger,
		Verbose:             v.GetBool(flagVerbose),
	}

	sourceBucket, sourceKey := parseBucket(sourceURI)
	destinationBucket, destinationKey := parseBucket(destinationURI)

	switch {
	case strings.HasPrefix(sourceURI, schemeS3) &&
		strings.HasPrefix(destinationURI, schemeS3) &&
		sourceBucket == destinationBucket &&
		sourceClientInput.equal(destinationClientInput):
		//
		// Copying within a bucket uses one filesystem, so objects are copied server side.
		//
		fileSystem := InitFileSystem(ctx, &InitFileSystemInput{
			URI:              sourceURI,
			Bucket:           sourceBucket,
			BucketKeyEnabled: bucketKeyEnabled,
			PartSize:         partSize,
			Client:           sourceClientInput,
		})
		input.Source = "/" + sourceKey
		input.SourceFileSystem = fileSystem
		input.Destination = "/" + destinationKey
		input.DestinationFileSystem = fileSystem
	default:
		input.SourceFileSystem = InitFileSystem(ctx, &InitFileSystemInput{
			URI:      sourceURI,
			ReadOnly: true,
			Bucket:   sourceBucket,
			Prefix:   sourceKey,
			PartSize: partSize,
			Client:   sourceClientInput,
		})
		input.Source = "/"
		if !strings.HasPrefix(sourceURI, schemeS3) {
			if input.Source, err = localPath(sourceURI); err != nil {
				return err
			}
		}
		input.DestinationFileSystem = InitFileSystem(ctx, &InitFileSystemInput{
			URI:              destinationURI,
			Bucket:           destinationBucket,
			Prefix:           destinationKey,
			BucketKeyEnabled: bucketKeyEnabled,
			PartSize:         partSize,
			Client:           destinationClientInput,
		})
		input.Destination = "/"
		if !strings.HasPrefix(destinationURI, schemeS3) {
			if input.Destination, err = localPath(destinationURI); err != nil {
				return err
			}
		}
	}

	final, err := copier.Copy(ctx, input)
	if printError := printState(os.Stdout, final, v.GetString(flagJSON)); printError != nil {
		return printError
	}
	if err != nil {
		fields := map[string]interface{}{
			"source":      sourceURI,
			"destination": destinationURI,
			"error":       err.Error(),
		}
		var copyError *copier.Error
		if errors.As(err, &copyError) {
			fields["kind"] = string(copyError.Kind)
		}
		_ = logger.Log("Error copying", fields)
		return err
	}

	_ = logger.Log("Done copying", map[string]interface{}{
		"source":      sourceURI,
		"destination": destinationURI,
		"counts":      final.Counts,
	})

	return nil
}

func main() {
	rootCommand := &cobra.Command{
		Use:                   `gocopy [flags]`,
		DisableFlagsInUseLine: true,
		Short: strings.Join([]string{
			"gocopy is a simple command line program for copying files and directories specified by URI.",
			"gocopy schemes returns the currently supported schemes.",
			"Local files are specified using the \"file://\" scheme or a path without a scheme.",
			"S3 files are specified using the \"s3://\" scheme.",
		}, "\n"),
	}

	layoutsCommand := &cobra.Command{
		Use:                   `layouts`,
		DisableFlagsInUseLine: true,
		Short:                 "show supported timestamp layouts",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range ts.LayoutNames() {
				fmt.Printf("%s: %s\n", name, ts.NamedLayouts[name])
			}
			return nil
		},
	}

	copyCommand := &cobra.Command{
		Use:                   "copy SOURCE DESTINATION",
		DisableFlagsInUseLine: true,
		Short:                 "copy",
		Long:                  "copy source to destination, resuming from the state file if one is given",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE:                  copyCommandRunE,
	}
	initCopyCommandFlags(copyCommand.Flags())

	schemesCommand := &cobra.Command{
		Use:                   `schemes`,
		DisableFlagsInUseLine: true,
		Short:                 "show supported schemes",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("file")
			fmt.Println("s3")
			return nil
		},
	}

	versionCommand := &cobra.Command{
		Use:                   `version`,
		DisableFlagsInUseLine: true,
		Short:                 "show version",
		SilenceErrors:         true,
		SilenceUsage:          true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(GoCopyVersion)
			return nil
		},
	}

	rootCommand.AddCommand(layoutsCommand, copyCommand, schemesCommand, versionCommand)

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gocopy: "+err.Error())
		fmt.Fprintln(os.Stderr, "Try \"gocopy --help\" for more information.")
		os.Exit(1)
	}
}
