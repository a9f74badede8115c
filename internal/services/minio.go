package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Stockage objet pour les images produit. Le client reste nil si MinIO
// n'est pas configuré, les uploads répondent alors en erreur explicite.
var (
	minioClient   *minio.Client
	minioEndpoint string
	minioSecure   bool
)

func ConnectMinio() {
	minioEndpoint = os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		log.Println("⚠️ MINIO_ENDPOINT absent — upload d'images désactivé")
		return
	}
	minioSecure = os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(minioEndpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			"",
		),
		Secure: minioSecure,
	})
	if err != nil {
		log.Println("⚠️ MinIO non configuré :", err)
		return
	}

	minioClient = client
	log.Println("✅ Connecté à MinIO :", minioEndpoint)
}

// ensureBucket crée le bucket au premier upload s'il n'existe pas encore.
func ensureBucket(ctx context.Context, bucket string) error {
	exists, err := minioClient.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return minioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

// objectKey génère un nom d'objet unique en gardant l'extension d'origine.
// Le nom de fichier client n'est jamais réutilisé tel quel (collisions,
// caractères exotiques).
func objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return uuid.NewString() + ext
}

func publicURL(bucket, key string) string {
	scheme := "http"
	if minioSecure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, minioEndpoint, bucket, key)
}

// UploadFile envoie un fichier multipart dans un bucket et retourne l'URL
// publique de l'objet créé.
func UploadFile(bucket string, file *multipart.FileHeader) (string, error) {
	if minioClient == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("ouverture fichier: %w", err)
	}
	defer src.Close()

	ctx := context.Background()
	if err := ensureBucket(ctx, bucket); err != nil {
		return "", fmt.Errorf("bucket %s: %w", bucket, err)
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := objectKey(file.Filename)
	if _, err := minioClient.PutObject(ctx, bucket, key, src, file.Size,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", err
	}

	log.Printf("📤 Image envoyée: %s/%s (%d octets)", bucket, key, file.Size)
	return publicURL(bucket, key), nil
}
