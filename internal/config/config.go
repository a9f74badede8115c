package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// Getenv retourne la variable d'environnement ou la valeur par défaut.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvMs(key string, defMs int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
		log.Printf("⚠️ Valeur invalide pour %s, on garde le défaut (%d ms)", key, defMs)
	}
	return time.Duration(defMs) * time.Millisecond
}

// PreviewWatchdog est le délai sans message du flux avant un fetch de rattrapage.
// Paramètre de réglage, pas de backoff adaptatif.
func PreviewWatchdog() time.Duration {
	return getenvMs("PREVIEW_WATCHDOG_MS", 1200)
}

// PreviewPoll est l'intervalle du polling de secours de l'écran client.
func PreviewPoll() time.Duration {
	return getenvMs("PREVIEW_POLL_MS", 1200)
}

// PreviewURL est l'endpoint d'aperçu poussé par la caisse.
func PreviewURL() string {
	return Getenv("PREVIEW_URL", "http://localhost:8080/public/order-preview")
}

// DefaultTill est la caisse utilisée quand aucune n'est précisée.
func DefaultTill() string {
	return Getenv("TILL_DEFAULT", "1")
}
