package ast

type (
	FileID      uint32
	ItemID      uint32
	StmtID      uint32
	ExprID      uint32
	TypeExprID  uint32
	FieldID     uint32
	ParamID     uint32
	TypeParamID uint32
	BoundID     uint32
)

const (
	NoFileID      FileID      = 0
	NoItemID      ItemID      = 0
	NoStmtID      StmtID      = 0
	NoExprID      ExprID      = 0
	NoTypeExprID  TypeExprID  = 0
	NoFieldID     FieldID     = 0
	NoParamID     ParamID     = 0
	NoTypeParamID TypeParamID = 0
	NoBoundID     BoundID     = 0
)

func (id FileID) IsValid() bool      { return id != NoFileID }
func (id ItemID) IsValid() bool      { return id != NoItemID }
func (id StmtID) IsValid() bool      { return id != NoStmtID }
func (id ExprID) IsValid() bool      { return id != NoExprID }
func (id TypeExprID) IsValid() bool  { return id != NoTypeExprID }
func (id FieldID) IsValid() bool     { return id != NoFieldID }
func (id ParamID) IsValid() bool     { return id != NoParamID }
func (id TypeParamID) IsValid() bool { return id != NoTypeParamID }
func (id BoundID) IsValid() bool     { return id != NoBoundID }
