/*
Copyright © 2019 the lightning authors.
This file is part of lightning.

lightning is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

lightning is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with lightning.  If not, see <http://www.gnu.org/licenses/>.
*/

package lightningutil

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maxRetries is the number of times a failed HTTP download is retried.
const maxRetries = 3

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob.
// If so, it downloads the file and
// returns the path to the downloaded file.
// For shapefiles, it downloads all associated files and
// returns the path to the file with the ".shp" extension.
// Zip archives are extracted and the path of the first shapefile
// inside is returned.
// If anything fails, the error is logged and the original path is
// returned so that the failure is reported when the file is opened.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) string {
	if path == "" {
		return path
	}
	var local string
	switch {
	case fileExists(path):
		local = path
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		local = downloadHTTP(ctx, path, log)
	case IsBlob(path):
		local = downloadBlob(ctx, path, log)
	default:
		return path
	}
	if local == path && !fileExists(path) {
		return path // The download failed.
	}
	if strings.EqualFold(filepath.Ext(local), ".zip") {
		shp, err := unzipShp(local)
		if err != nil {
			log.WithField("path", path).Warn(err.Error())
			return path
		}
		return shp
	}
	return local
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file.
func downloadHTTP(ctx context.Context, path string, log logrus.FieldLogger) string {
	dir, err := ioutil.TempDir("", "lightning")
	if err != nil {
		log.Errorf("lightningutil: failed creating temporary download directory: %v", err)
		return path
	}
	u, err := url.Parse(path)
	if err != nil {
		log.Error(err.Error())
		return path
	}
	fnames := expandShp(u.Path)
	for _, fname := range fnames {
		fu := *u
		fu.Path = fname
		dst := filepath.Join(dir, filepath.Base(fname))
		var missing bool
		op := func() error {
			err := getHTTP(ctx, fu.String(), dst)
			if errors.Is(err, errHTTPNotFound) && optionalShp(fname) {
				missing = true
				return nil
			}
			return err
		}
		notify := func(err error, d time.Duration) {
			log.WithField("url", fu.String()).Warnf("lightningutil: download failed, retrying in %v: %v", d, err)
		}
		err := backoff.RetryNotify(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), notify)
		if err != nil {
			log.WithField("url", fu.String()).Errorf("lightningutil: download failed: %v", err)
			return path
		}
		if missing {
			log.WithField("url", fu.String()).Debug("lightningutil: skipping missing optional file")
		}
	}
	log.WithField("url", path).Debug("lightningutil: downloaded file")
	return filepath.Join(dir, filepath.Base(fnames[0]))
}

var errHTTPNotFound = errors.New("404 Not Found")

// getHTTP saves the resource at u to the file dst.
func getHTTP(ctx context.Context, u, dst string) error {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", u, errHTTPNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", u, resp.Status)
	}
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, resp.Body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local
// filesystem, "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("lightningutil.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("lightningutil.OpenBucket: invalid provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, log logrus.FieldLogger) string {
	u, err := url.Parse(path)
	if err != nil {
		log.Error(err.Error())
		return path
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		log.Error(err.Error())
		return path
	}
	dir, err := ioutil.TempDir("", "lightning")
	if err != nil {
		log.Errorf("lightningutil: failed creating temporary download directory: %v", err)
		return path
	}
	for _, fname := range expandShp(strings.TrimPrefix(u.Path, "/")) {
		if err := copyBlob(ctx, bucket, fname, filepath.Join(dir, filepath.Base(fname))); err != nil {
			log.WithField("blob", path).Error(err.Error())
			return path
		}
	}
	return filepath.Join(dir, filepath.Base(u.Path))
}

func copyBlob(ctx context.Context, bucket *blob.Bucket, key, dst string) error {
	r, err := bucket.NewReader(ctx, key)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise
func expandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}

// optionalShp returns whether the shapefile component fname can be
// absent. A shapefile without a .prj is in longitude and latitude.
func optionalShp(fname string) bool {
	return strings.EqualFold(filepath.Ext(fname), ".prj")
}

var errNoShp = errors.New("no shapefile in archive")

// unzipShp extracts the zip archive at path into a temporary directory
// named after the archive and returns the path of the first shapefile
// in the extracted tree.
func unzipShp(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("lightningutil: opening %s: %v", path, err)
	}
	defer r.Close()

	tmp, err := ioutil.TempDir("", "lightning")
	if err != nil {
		return "", err
	}
	dir := filepath.Join(tmp, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for _, f := range r.File {
		dst := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dst, filepath.Clean(dir)+string(os.PathSeparator)) {
			return "", fmt.Errorf("lightningutil: %s: invalid file name %q", path, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0755); err != nil {
				return "", err
			}
			continue
		}
		if err := extract(f, dst); err != nil {
			return "", fmt.Errorf("lightningutil: extracting %s: %v", path, err)
		}
	}

	var shp string
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if shp == "" && !info.IsDir() && strings.EqualFold(filepath.Ext(p), ".shp") {
			shp = p
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if shp == "" {
		return "", fmt.Errorf("lightningutil: %s: %v", path, errNoShp)
	}
	return shp, nil
}

func extract(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
