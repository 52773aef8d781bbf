package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceUnavailable = errors.New("fonte de dados indisponível")
	ErrSheetNotFound     = errors.New("aba não encontrada na planilha")
	ErrParse             = errors.New("não foi possível ler a planilha")
	ErrUnsupportedFormat = fmt.Errorf("%w: formato não suportado (use .xlsx ou .xls)", ErrParse)
	ErrMissingColumns    = errors.New("colunas obrigatórias ausentes")
	ErrEmptyResult       = errors.New("nenhum pedido FATURADO encontrado para os filtros selecionados")

	ErrCredentialsMissing = errors.New("variáveis de ambiente EMAIL_REMETENTE e SENHA_REMETENTE não configuradas")
	ErrInvalidRecipient   = errors.New("e-mail do destinatário inválido")
)

type MissingColumnsError struct {
	Expected []string
	Found    []string
}

func (e *MissingColumnsError) Error() string {
	found := e.Found
	if len(found) > 10 {
		found = found[:10]
	}
	return fmt.Sprintf("a planilha deve conter as colunas: %s (colunas atuais: %s)",
		strings.Join(e.Expected, ", "), strings.Join(found, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// DeliveryError carries the transport, auth or protocol failure reported
// while handing the message to the relay.
type DeliveryError struct {
	Detail string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("erro ao enviar: %s", e.Detail)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
