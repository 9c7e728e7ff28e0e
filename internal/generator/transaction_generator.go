package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"guardchain-realtime/internal/models"

	"github.com/google/uuid"
)

const (
	MinAmount = 100000.0
	MaxAmount = 100000000.0
	Currency  = "IDR"
)

var (
	banks            = []string{"BCA", "Mandiri", "BNI", "BRI", "CIMB Niaga"}
	transactionTypes = []string{"TRANSFER", "PAYMENT", "WITHDRAWAL", "DEPOSIT"}

	// Города покрывают все уровни риска по местоположению
	cities = []string{
		"Jakarta", "Surabaya", "Medan",
		"Bandung", "Semarang", "Palembang",
		"Makassar", "Denpasar", "Yogyakarta", "Balikpapan", "Malang", "Pontianak",
	}

	firstNames = []string{"Budi", "Siti", "Agus", "Dewi", "Rizky", "Putri", "Andi", "Wahyu", "Rina", "Eko", "Fajar", "Intan"}
	lastNames  = []string{"Santoso", "Wijaya", "Saputra", "Lestari", "Hidayat", "Pratama", "Kusuma", "Nugroho", "Siregar", "Halim"}

	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (Linux; Android 14; SM-A546E) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Mobile Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
		"GuardChainMobile/2.4.1 (Android 13; Xiaomi 13T)",
	}

	words = []string{
		"payment", "invoice", "monthly", "transfer", "rent", "supplier", "salary", "tuition",
		"order", "settlement", "family", "savings", "utility", "purchase", "loan", "installment",
	}
)

type TransactionGenerator struct {
	mu   sync.Mutex
	rand *rand.Rand
	now  func() time.Time
}

// NewTransactionGenerator создает генератор со случайным зерном
func NewTransactionGenerator() *TransactionGenerator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator создает генератор с фиксированным зерном (для воспроизводимых тестов)
func NewSeededGenerator(seed int64) *TransactionGenerator {
	return &TransactionGenerator{
		rand: rand.New(rand.NewSource(seed)),
		now:  time.Now,
	}
}

// GenerateTransaction генерирует правдоподобную транзакцию. Побочных эффектов нет,
// генератор безопасен для одновременного использования.
func (g *TransactionGenerator) GenerateTransaction() *models.TransactionInput {
	g.mu.Lock()
	defer g.mu.Unlock()

	sourceBank := g.pick(banks)
	destinationBank := sourceBank
	for destinationBank == sourceBank {
		destinationBank = g.pick(banks)
	}

	fromAccount := g.accountNumber()
	toAccount := g.accountNumber()
	for toAccount == fromAccount {
		toAccount = g.accountNumber()
	}

	ip := g.ipAddress()
	userAgent := g.pick(userAgents)
	location := fmt.Sprintf("%s, Indonesia", g.pick(cities))
	deviceID := uuid.New().String()

	return &models.TransactionInput{
		TransactionID: uuid.New().String(),
		Amount:        g.amount(),
		Currency:      Currency,
		FromAccount:   fromAccount,
		ToAccount:     toAccount,
		Description:   g.sentence(),
		IPAddress:     ip,
		UserAgent:     userAgent,
		Location:      location,
		DeviceID:      deviceID,
		CreatedAt:     g.now(),
		Metadata: models.TransactionMetadata{
			IPAddress:       ip,
			UserAgent:       userAgent,
			Location:        location,
			DeviceID:        deviceID,
			SourceBank:      sourceBank,
			SourceName:      g.fullName(),
			DestinationBank: destinationBank,
			DestinationName: g.fullName(),
			TransactionType: g.pick(transactionTypes),
		},
	}
}

// GenerateBatch генерирует count транзакций
func (g *TransactionGenerator) GenerateBatch(count int) []*models.TransactionInput {
	if count <= 0 {
		return nil
	}
	batch := make([]*models.TransactionInput, 0, count)
	for i := 0; i < count; i++ {
		batch = append(batch, g.GenerateTransaction())
	}
	return batch
}

// amount возвращает сумму в диапазоне [MinAmount, MaxAmount] с точностью до копеек
func (g *TransactionGenerator) amount() float64 {
	value := roundToTwoDecimals(MinAmount + g.rand.Float64()*(MaxAmount-MinAmount))
	return math.Min(math.Max(value, MinAmount), MaxAmount)
}

func (g *TransactionGenerator) accountNumber() string {
	return fmt.Sprintf("%010d", g.rand.Int63n(10000000000))
}

func (g *TransactionGenerator) ipAddress() string {
	return fmt.Sprintf("%d.%d.%d.%d", 1+g.rand.Intn(223), g.rand.Intn(256), g.rand.Intn(256), 1+g.rand.Intn(254))
}

func (g *TransactionGenerator) fullName() string {
	return g.pick(firstNames) + " " + g.pick(lastNames)
}

func (g *TransactionGenerator) sentence() string {
	n := 4 + g.rand.Intn(5)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = g.pick(words)
	}
	s := strings.Join(parts, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func (g *TransactionGenerator) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}

func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
