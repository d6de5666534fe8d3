package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/covera-io/covera/internal/coverage"
	"github.com/covera-io/covera/internal/domain"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/database"
)

// decideCmd represents the decide command
var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "단건 커버리지 판정",
	Long: `클레임 하나에 대해 커버리지 판정을 실행하고 결과를 출력합니다.

이 명령어는:
- 계약 또는 부속 컨텍스트 해석
- 제품/날짜로 적용 라인 선택
- 필수 입력 및 보증 기간 판정

Example:
  go run ./cmd/covera decide --contract 1 --product 1 --event-date 2024-06-01
  go run ./cmd/covera decide --appendix 2 --product 1 --event-date 2024-06-01 \
    --serial SN-100 --purchase-date 2024-05-01 --proof`,
	RunE: runDecide,
}

var (
	decideContractID      int64
	decideAppendixID      int64
	decideProductID       int64
	decideEventDate       string
	decideSerial          string
	decidePurchaseDate    string
	decideActivationDate  string
	decideManufactureDate string
	decideProof           bool
	decideCountry         string
	decideChannel         string
)

func init() {
	rootCmd.AddCommand(decideCmd)

	// Flags
	decideCmd.Flags().Int64Var(&decideContractID, "contract", 0, "계약 ID")
	decideCmd.Flags().Int64Var(&decideAppendixID, "appendix", 0, "부속 ID (계약 ID보다 우선)")
	decideCmd.Flags().Int64Var(&decideProductID, "product", 0, "제품 ID")
	decideCmd.Flags().StringVar(&decideEventDate, "event-date", "", "클레임 발생일 (YYYY-MM-DD)")
	decideCmd.Flags().StringVar(&decideSerial, "serial", "", "시리얼 번호")
	decideCmd.Flags().StringVar(&decidePurchaseDate, "purchase-date", "", "구매일 (YYYY-MM-DD)")
	decideCmd.Flags().StringVar(&decideActivationDate, "activation-date", "", "개통일 (YYYY-MM-DD)")
	decideCmd.Flags().StringVar(&decideManufactureDate, "manufacture-date", "", "제조일 (YYYY-MM-DD)")
	decideCmd.Flags().BoolVar(&decideProof, "proof", false, "증빙 제출 여부")
	decideCmd.Flags().StringVar(&decideCountry, "country", "", "국가 코드")
	decideCmd.Flags().StringVar(&decideChannel, "channel", "", "판매 채널")

	decideCmd.MarkFlagRequired("product")
	decideCmd.MarkFlagRequired("event-date")
}

func runDecide(cmd *cobra.Command, args []string) error {
	eventDate, err := time.Parse("2006-01-02", decideEventDate)
	if err != nil {
		return fmt.Errorf("invalid --event-date (expected YYYY-MM-DD): %w", err)
	}

	inputs, err := decideInputs(cmd)
	if err != nil {
		return err
	}

	req := coverage.Request{
		ProductID: decideProductID,
		EventDate: eventDate,
		Inputs:    inputs,
	}
	if cmd.Flags().Changed("contract") {
		req.ContractID = &decideContractID
	}
	if cmd.Flags().Changed("appendix") {
		req.AppendixID = &decideAppendixID
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	engine := coverage.NewEngine(store.NewContractRepository(db.Pool))

	result, err := engine.Decide(context.Background(), req)
	if err != nil {
		return fmt.Errorf("decide coverage: %w", err)
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	fmt.Println(string(output))

	return nil
}

// decideInputs assembles the claim inputs from the provided flags only,
// so absent flags count as missing fields
func decideInputs(cmd *cobra.Command) (domain.ClaimInputs, error) {
	inputs := domain.ClaimInputs{}

	if decideSerial != "" {
		inputs["serial_number"] = decideSerial
	}
	if cmd.Flags().Changed("proof") {
		inputs["proof_provided"] = decideProof
	}
	if decideCountry != "" {
		inputs["country"] = decideCountry
	}
	if decideChannel != "" {
		inputs["channel"] = decideChannel
	}

	dateFlags := map[string]string{
		"purchase_date":    decidePurchaseDate,
		"activation_date":  decideActivationDate,
		"manufacture_date": decideManufactureDate,
	}
	for field, value := range dateFlags {
		if value == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s (expected YYYY-MM-DD): %w", field, err)
		}
		inputs[field] = date
	}

	return inputs, nil
}
