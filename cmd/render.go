package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vision-overlay/internal/domain/entity"
	"vision-overlay/internal/infrastructure/logging"
)

func newRenderCommand(configPath *string) *cobra.Command {
	var (
		imagePath      string
		detectionsPath string
		label          string
		outPath        string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Нарисовать рамки поверх снимка и сохранить JPEG",
		Long: `Рисует рамки поверх снимка. Ответ детектора берётся из файла --detections,
а без него снимок отправляется в сервис детекции из конфигурации.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*configPath)
			logger, err := logging.New(cfg.Server.Mode)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logging.Sync(logger)

			photo, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			label = entity.ResolveLabel(label, cfg.Overlay.DefaultLabel)

			svc := newContainer(cfg, nil, logger).InspectionService
			ctx := cmd.Context()

			if detectionsPath != "" {
				payload, err := os.ReadFile(detectionsPath)
				if err != nil {
					return fmt.Errorf("read detections: %w", err)
				}
				result, err := svc.RenderPayload(ctx, photo, payload, label)
				if err != nil {
					return err
				}
				return writeResult(cmd, outPath, result.Summary, result.Highlighted)
			}

			result, err := svc.Inspect(ctx, photo, label)
			if err != nil {
				return err
			}
			return writeResult(cmd, outPath, result.Summary, result.Highlighted)
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "путь к снимку")
	cmd.Flags().StringVarP(&detectionsPath, "detections", "d", "", "JSON-ответ детектора")
	cmd.Flags().StringVarP(&label, "label", "l", "", "подпись для рамок без класса")
	cmd.Flags().StringVarP(&outPath, "out", "o", "overlay.jpg", "куда сохранить результат")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func writeResult(cmd *cobra.Command, outPath, summary string, highlighted []byte) error {
	cmd.Println(summary)
	if len(highlighted) == 0 {
		return errors.New("nothing to draw: no detections")
	}
	if err := os.WriteFile(outPath, highlighted, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	cmd.Printf("Saved %s\n", outPath)
	return nil
}
