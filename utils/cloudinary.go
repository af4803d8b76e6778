package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

func cloudinaryInstance() (*cloudinary.Cloudinary, error) {
	return cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
}

// UploadOrchardImage pushes one uploaded file into the "orchards" folder
// and returns its public URL.
func UploadOrchardImage(file multipart.File, fileHeader *multipart.FileHeader) (string, error) {
	cld, err := cloudinaryInstance()
	if err != nil {
		return "", fmt.Errorf("cloudinary config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: "orchards",
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %v", err)
	}

	return resp.SecureURL, nil
}

// DeleteOrchardImage removes an image previously uploaded with
// UploadOrchardImage, given its full URL.
func DeleteOrchardImage(imageURL string) error {
	cld, err := cloudinaryInstance()
	if err != nil {
		return fmt.Errorf("cloudinary config error: %v", err)
	}

	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %v", err)
	}

	return nil
}

// extractPublicID recovers the Cloudinary public ID (folder + filename
// without extension) from a delivery URL like
// https://res.cloudinary.com/demo/image/upload/v1234567890/orchards/abc123.jpg
func extractPublicID(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	// cloud name / resource type / delivery type / [version] / folder / file
	if len(parts) < 4 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[3:]
	if strings.HasPrefix(rest[0], "v") && len(rest) > 1 {
		rest = rest[1:]
	}

	publicID := strings.TrimSuffix(path.Join(rest...), path.Ext(rest[len(rest)-1]))
	return publicID, nil
}
