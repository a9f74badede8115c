package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"moka_pos/internal/config"
	"moka_pos/internal/models"
	"moka_pos/internal/preview"
)

// Écran client : affiche en continu l'aperçu de la commande en cours.
// Se connecte au flux SSE du serveur et bascule en polling si le flux tombe.
func main() {
	config.Load()

	sub := preview.NewSubscriber(
		config.PreviewURL(),
		config.PreviewWatchdog(),
		config.PreviewPoll(),
		render,
	)
	sub.Start()
	log.Println("🖥️ Écran client connecté à", config.PreviewURL())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	sub.Close()
	log.Println("🛑 Écran client arrêté")
}

func render(p models.PreviewPayload) {
	fmt.Print("\033[2J\033[H") // efface l'écran

	if len(p.Lines) == 0 {
		fmt.Println("  Bienvenue !")
		return
	}

	fmt.Println("  Votre commande")
	fmt.Println("  --------------")
	for _, line := range p.Lines {
		fmt.Printf("  %dx %-30s %8.2f€\n", line.Quantity, line.ProductName, line.LineTotal)
	}
	fmt.Println("  --------------")
	fmt.Printf("  Total %38.2f€\n", p.Total)

	if p.Customer != nil {
		fmt.Printf("\n  Client: %s\n", p.Customer.Name)
	}
}
