package network

// EventHandler é a interface que conecta a lógica da rede com a lógica do jogo.
// Todos os métodos são chamados pela goroutine do Hub, um de cada vez.
type EventHandler interface {
	// OnConnect é chamado quando um novo cliente se conecta com sucesso.
	OnConnect(c *Client)

	// OnDisconnect é chamado depois que o cliente saiu de todas as salas e
	// parou de aceitar mensagens.
	OnDisconnect(c *Client)

	// OnMessage é chamado para cada mensagem recebida de um cliente.
	OnMessage(c *Client, msg Message)
}
