package topics

const (
	// Kafka: lotes normalizados publicados a cada refresh de página
	PredictionBatches = "prediction_batches"

	// DLQ para lotes que falharam na persistência
	PredictionBatchesDLQ = "prediction_batches_dlq"

	// Redis Pub/Sub: snapshots para o feed WebSocket
	SnapshotsBroadcast = "insights_snapshots_broadcast"
)
