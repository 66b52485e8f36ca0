package mapping

type UpsertMappingDTO struct {
	ColumnType       Field   `json:"column_type"`
	BoardID          *string `json:"board_id"`
	ExternalColumnID string  `json:"external_column_id"`
}

type UpsertBoardDTO struct {
	BoardID string    `json:"board_id"`
	Name    string    `json:"name"`
	Kind    BoardKind `json:"kind"`
}
