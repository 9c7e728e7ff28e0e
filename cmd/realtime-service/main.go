package main

import (
	"log"

	realtime "guardchain-realtime/internal/bootstrap/realtime_service"
)

// @title GuardChain Realtime API
// @version 1.0
// @description Конвейер синтетических транзакций: оценка риска, оповещения, аналитика и рассылка по WebSocket
// @host localhost:8000
// @BasePath /
func main() {
	if err := realtime.StartRealtimeService(); err != nil {
		log.Fatalf("realtime service failed: %v", err)
	}
}
