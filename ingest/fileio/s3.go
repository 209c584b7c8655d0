package fileio

import (
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// downloadS3 streams bucket/key into dst using the AWS SDK's managed,
// concurrent-part downloader.
func downloadS3(bucket, key string, dst *os.File) error {
	sess, err := session.NewSession()
	if err != nil {
		return errors.Wrap(err, "fileio: creating AWS session")
	}
	downloader := s3manager.NewDownloader(sess)
	_, err = downloader.Download(dst, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return errors.Wrapf(err, "fileio: downloading s3://%s/%s", bucket, key)
	}
	return nil
}
