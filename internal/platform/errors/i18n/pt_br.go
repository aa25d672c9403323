package i18n

var ptBRMessages = map[Code]string{
	CodeUnknown: "Algo deu errado. Tente novamente.",

	CodeMalformedRequest: "Use um formato válido: '{{.Usage}}'",
	CodeTooManyDice:      "Limite de {{.Max}} dados excedido nesta rolagem. Ajuste o pedido",

	CodeAlreadyExists: "O personagem {{.Nickname}} já existe.",
	CodeNotFound:      "Nenhum personagem encontrado para {{.Nickname}}",
	CodeNoData:        "Não há dados para esta categoria.",

	CodeSessionExpired:      "Esta ficha expirou. Abra novamente com /show_talent.",
	CodeCategoryNotSelected: "Selecione uma categoria antes de editar.",
	CodeCategoryNotEditable: "{{.Category}} não pode ser editado.",
	CodeFormNotOpen:         "Não há formulário aberto para esta ficha.",
}
